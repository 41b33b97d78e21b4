package shell

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

func cmdDump(s *Shell, path string) {
	if path == "" {
		fmt.Println("Usage: .dump <file>")
		return
	}

	op, err := s.conn.IterDump()
	if err != nil {
		fmt.Println("Failed to dump database:", err)
		return
	}
	value, err := op.Await(s.ctx)
	if err != nil {
		fmt.Println("Failed to dump database:", err)
		return
	}
	lines := value.([]string)

	file, err := os.Create(path)
	if err != nil {
		fmt.Println("Failed to create dump file:", err)
		return
	}
	defer file.Close()

	bar := progressbar.Default(int64(len(lines)), "Dumping")
	for _, line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			fmt.Println("Failed to write dump file:", err)
			return
		}
		_ = bar.Add(1)
	}

	dimmedColor().Printf("Dumped %d statements to %s\n", len(lines), path)
	fmt.Println()
}
