package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoInput is returned when no file is given and stdin is an interactive terminal.
var ErrNoInput = errors.New("no input: pass a file or pipe data on stdin")

// ReadInput reads the named file, or stdin when path is "" or "-".
func ReadInput(path string, stdin *os.File) ([]byte, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return data, nil
	}
	if stdin == nil {
		return nil, ErrNoInput
	}
	if term.IsTerminal(int(stdin.Fd())) {
		return nil, ErrNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
