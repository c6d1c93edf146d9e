package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Folio banner with the release version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Warm paper tones, top to bottom.
	lines := []struct {
		text  string
		color string
	}{
		{"   ___     _ _      ", "#fde68a"},
		{"  | __|__ | (_)___  ", "#fcd34d"},
		{"  | _/ _ \\| | / _ \\ ", "#fbbf24"},
		{"  |_|\\___/|_|_\\___/ ", "#f59e0b"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
