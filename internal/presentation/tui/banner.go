package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/faceless/pkg/domain"
	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  ___                _              ", "#818cf8"},
	{" | __|_ _ __ ___| |___ ______", "#a78bfa"},
	{" | _/ _` / _/ -_) / -_|_-<_-<", "#c084fc"},
	{" |_|\\__,_\\__\\___|_\\___/__/__/", "#f472b6"},
}

// PrintBanner writes the Faceless banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// PrintPersona writes the active persona and mode below the banner.
func PrintPersona(w io.Writer, persona string, mode domain.Mode) {
	p := termenv.ColorProfile()
	color := "#34d399"
	if !mode.Filtered() {
		color = "#fb7185"
	}
	badge := termenv.String(fmt.Sprintf(" %s ", mode)).Background(p.Color(color)).Foreground(p.Color("#111827")).Bold()
	fmt.Fprintf(w, "%s %s\n", badge, termenv.String(persona).Italic())
	fmt.Fprintln(w, termenv.String("Commands: /mode <regular|uncensored>  /persona [text]  /reset  /quit").Faint())
	fmt.Fprintln(w)
}
