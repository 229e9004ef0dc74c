package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the panmirror banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`  _ __   __ _ _ __  _ __ ___ (_)_ __ _ __ ___  _ __ `, "#818cf8"},
		{` | '_ \ / _' | '_ \| '_ ' _ \| | '__| '__/ _ \| '__|`, "#a78bfa"},
		{` | |_) | (_| | | | | | | | | | | |  | | | (_) | |   `, "#c084fc"},
		{` | .__/ \__,_|_| |_|_| |_| |_|_|_|  |_|  \___/|_|   `, "#e879f9"},
		{` |_|                                                `, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(" version "+version).Faint())
	fmt.Fprintln(w)
}
