package version

import (
	"fmt"

	"github.com/nsqlite/sqlite3/ffi"
)

const (
	Version = "v0.1.0"

	colorReset     = "\033[0m"
	colorCyanBold  = "\033[36;1m"
	colorWhiteBold = "\033[37;1m"
)

// asciiArtTpl returns the banner of sqlite3ex with a placeholder for the
// engine version.
func asciiArtTpl() string {
	asciiArt := `
           _ _ _       _____
 ___  __ _| (_) |_ ___|___ / _____  __
/ __|/ _` + "`" + ` | | | __/ _ \ |_ \/ _ \ \/ /
\__ \ (_| | | | ||  __/___) |  __/>  <
|___/\__, |_|_|\__\___|____/ \___/_/\_\
        |_|  ` + Version + ` (engine %s)`

	asciiArt = asciiArt[1:]                          // This just removes the first newline character
	asciiArt = colorCyanBold + asciiArt + colorReset // Add color to the ASCII art

	return asciiArt
}

// Banner returns the colored banner of sqlite3ex.
func Banner() string {
	return fmt.Sprintf(asciiArtTpl(), ffi.LibVersion())
}

// Short returns a single line with the program and engine versions.
func Short() string {
	return fmt.Sprintf("%ssqlite3ex %s%s (SQLite %s)", colorWhiteBold, Version, colorReset, ffi.LibVersion())
}
