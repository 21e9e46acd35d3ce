package rewrite

import (
	"fmt"
	"strings"
)

// Diff renders a unified-style report of the changes reps would make to
// buf, one hunk per changed span, grouped by original line number. It is
// computed from the span offsets directly rather than by re-diffing the
// two buffers, so a hunk always covers exactly one replacement.
func Diff(path string, buf []byte, reps []Replacement) string {
	var b strings.Builder

	wrote := false
	for _, r := range reps {
		if !r.Translated {
			continue
		}
		old := string(buf[r.Span.Start:r.Span.End])
		if old == r.Text {
			continue
		}
		if !wrote {
			fmt.Fprintf(&b, "--- %s\n+++ %s (translated)\n", path, path)
			wrote = true
		}
		line := lineOf(buf, r.Span.Start)
		fmt.Fprintf(&b, "@@ line %d (%s) @@\n", line, r.Span.Kind)
		for _, l := range strings.Split(old, "\n") {
			fmt.Fprintf(&b, "-%s\n", l)
		}
		for _, l := range strings.Split(r.Text, "\n") {
			fmt.Fprintf(&b, "+%s\n", l)
		}
	}
	return b.String()
}

// lineOf returns the 1-based line number of a byte offset.
func lineOf(buf []byte, off int) int {
	line := 1
	for i := 0; i < off && i < len(buf); i++ {
		if buf[i] == '\n' {
			line++
		}
	}
	return line
}
