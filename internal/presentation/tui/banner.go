package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the tgquest banner, coloured when out is a terminal.
func PrintBanner(out io.Writer, version string) {
	o := termenv.NewOutput(out)
	lines := []struct {
		text  string
		color string
	}{
		{`  _                              _   `, "#818cf8"},
		{` | |_ __ _ __ _ _  _ ___ ___| |_ `, "#a78bfa"},
		{` |  _/ _' / _' | || / -_|_-<  _|`, "#c084fc"},
		{`  \__\__, \__, |\_,_\___/__/\__|`, "#e879f9"},
		{`     |___/   |_|                 `, "#f472b6"},
	}

	fmt.Fprintln(out)
	for _, l := range lines {
		fmt.Fprintln(out, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintln(out, o.String("  v"+version).Faint())
	fmt.Fprintln(out)
}
