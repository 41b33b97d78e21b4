package shell

import (
	"fmt"
	"log"

	"github.com/alexflint/go-arg"
	"github.com/zfl1011/aiosqlite3/internal/version"
)

// Config represents the configuration for the aiosqlite3 shell.
type Config struct {
	Database       string `arg:"positional" help:"Path to the SQLite database file (default to an in-memory database)" default:":memory:"`
	Workers        int    `arg:"-w,--workers" help:"Number of worker goroutines driving the database handle (default to the number of CPUs)" default:"0"`
	Echo           bool   `arg:"-e,--echo" help:"Trace every dispatched call as structured JSON"`
	IsolationLevel string `arg:"--isolation" help:"Implicit transaction mode: empty for autocommit, or DEFERRED, IMMEDIATE, EXCLUSIVE" default:""`
}

func (Config) Version() string {
	return fmt.Sprintf("%s\n", version.CLIVersion())
}

// MustParse parses and validates the configuration from the command
// line arguments. It returns a Config struct or exits the program
// with an error.
func MustParse(args []string) Config {
	cfg := Config{}

	parser, err := arg.NewParser(
		arg.Config{},
		&cfg,
	)
	if err != nil {
		log.Fatal(err)
	}
	parser.MustParse(args[1:])

	return cfg
}
