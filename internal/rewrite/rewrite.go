// Package rewrite reassembles a file buffer from its original bytes and a
// set of aligned span replacements. The output is built by a single forward
// pass that copies the untouched gap before each span and then the
// replacement text, so original offsets are never adjusted for earlier
// length changes. Dry-run reporting reuses the same buffer, guaranteeing
// byte equality with what a real write would produce.
package rewrite

import (
	"fmt"

	"github.com/valpere/codetran/internal/scanner"
)

// Replacement pairs a span with its translated text. Translated is false
// when the gateway failed for that span; the original text is kept.
type Replacement struct {
	Span       scanner.Span
	Text       string
	Translated bool
}

// Apply builds the rewritten buffer. Replacements must be sorted by start
// offset, non-overlapping and within bounds; a violation means the span
// list is corrupt and the file must be left untouched.
func Apply(buf []byte, reps []Replacement) ([]byte, error) {
	prev := 0
	for i, r := range reps {
		if r.Span.Start < prev {
			return nil, fmt.Errorf("replacement %d: span [%d,%d) overlaps or out of order (prev end %d)",
				i, r.Span.Start, r.Span.End, prev)
		}
		if r.Span.End < r.Span.Start || r.Span.End > len(buf) {
			return nil, fmt.Errorf("replacement %d: span [%d,%d) out of bounds (buffer %d)",
				i, r.Span.Start, r.Span.End, len(buf))
		}
		prev = r.Span.End
	}

	out := make([]byte, 0, len(buf))
	prev = 0
	for _, r := range reps {
		out = append(out, buf[prev:r.Span.Start]...)
		if r.Translated {
			out = append(out, r.Text...)
		} else {
			out = append(out, buf[r.Span.Start:r.Span.End]...)
		}
		prev = r.Span.End
	}
	out = append(out, buf[prev:]...)
	return out, nil
}

// Changed reports whether applying reps would alter the buffer at all.
func Changed(buf []byte, reps []Replacement) bool {
	for _, r := range reps {
		if r.Translated && r.Text != string(buf[r.Span.Start:r.Span.End]) {
			return true
		}
	}
	return false
}
