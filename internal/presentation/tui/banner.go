package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the dashgrid banner to w using the terminal's color profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"     _           _                _     _ ", "#818cf8"},
		{"  __| | __ _ ___| |__   __ _ _ __(_) __| |", "#a78bfa"},
		{" / _` |/ _` / __| '_ \\ / _` | '__| |/ _` |", "#c084fc"},
		{"| (_| | (_| \\__ \\ | | | (_| | |  | | (_| |", "#e879f9"},
		{" \\__,_|\\__,_|___/_| |_|\\__, |_|  |_|\\__,_|", "#f472b6"},
		{"                       |___/              ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
