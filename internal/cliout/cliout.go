// Package cliout decides whether a CLI command's output should be rendered
// for a human at a terminal or as machine-readable JSON for a pipe.
package cliout

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY reports whether w is a terminal, following the same file-descriptor
// check as a standard isatty-based CLI: only *os.File values can be a TTY,
// anything else (a buffer, a pipe wrapper) is treated as non-interactive.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// JSON resolves whether output should be JSON: an explicit --json flag
// always wins, otherwise JSON is the default for anything that isn't an
// interactive terminal (a human gets a table, a pipe or redirect gets JSON).
func JSON(explicit bool, w io.Writer) bool {
	if explicit {
		return true
	}
	return !IsTTY(w)
}
