package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                                 _       _   `, "#34d399"},
	{` __      ____ _ _   _ _ __   ___ (_)_ __ | |_ `, "#2dd4bf"},
	{` \ \ /\ / / _' | | | | '_ \ / _ \| | '_ \| __|`, "#22d3ee"},
	{`  \ V  V / (_| | |_| | |_) | (_) | | | | | |_ `, "#38bdf8"},
	{`   \_/\_/ \__,_|\__, | .__/ \___/|_|_| |_|\__|`, "#60a5fa"},
	{`                |___/|_|                      `, "#818cf8"},
}

// PrintBanner writes the ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
