package version

import "fmt"

const (
	Version = "v0.1.0"

	colorReset    = "\033[0m"
	colorCyanBold = "\033[36;1m"
)

// asciiArtTpl returns the ASCII art of the aiosqlite3 shell.
func asciiArtTpl() string {
	asciiArt := `
       _                 _ _ _       _____
  __ _(_) ___  ___  __ _| (_) |_ ___|___ /
 / _` + "`" + ` | |/ _ \/ __|/ _` + "`" + ` | | | __/ _ \ |_ \
| (_| | | (_) \__ \ (_| | | | ||  __/___) |
 \__,_|_|\___/|___/\__, |_|_|\__\___|____/
                      |_|
%s ` + Version

	asciiArt = asciiArt[1:]                          // This just removes the first newline character
	asciiArt = colorCyanBold + asciiArt + colorReset // Add color to the ASCII art

	return asciiArt
}

// CLIVersion returns the version banner of the aiosqlite3 shell.
func CLIVersion() string {
	return fmt.Sprintf(asciiArtTpl(), "Shell")
}
