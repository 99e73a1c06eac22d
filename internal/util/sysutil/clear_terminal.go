package sysutil

import (
	"io"
	"os"
	"os/exec"
	"runtime"
)

const ansiClear = "\033[H\033[2J"

// ClearTerminal clears the terminal screen written by out. Windows consoles
// get a cls call, everything else the ANSI erase sequence.
func ClearTerminal(out io.Writer) {
	if runtime.GOOS == "windows" && out == os.Stdout {
		cmd := exec.Command("cmd", "/c", "cls")
		cmd.Stdout = os.Stdout
		_ = cmd.Run()
		return
	}

	_, _ = io.WriteString(out, ansiClear)
}
