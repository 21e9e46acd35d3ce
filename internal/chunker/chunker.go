// Package chunker packs extracted spans into size-bounded batches for a
// single gateway call. Packing is greedy, preserves source order and never
// splits a span: a span larger than the budget forms its own oversized
// chunk rather than being truncated or dropped.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/valpere/codetran/internal/scanner"
)

const (
	// DefaultMaxChars is the default per-chunk character budget.
	DefaultMaxChars = 5000

	// Separator joins span texts inside one prompt and splits the response
	// back into per-span translations. Chosen to never occur in source
	// text; a response missing it is a gateway contract violation.
	Separator = "\n@@__CODETRAN_SPLIT__@@\n"
)

var separatorLen = utf8.RuneCountInString(Separator)

// Chunk is an ordered batch of spans. Index positions line up with the
// slice of texts sent to, and translations received from, the gateway.
type Chunk struct {
	Spans []scanner.Span
	Size  int // rune count of the joined text
}

// Texts returns the span texts in source order.
func (c *Chunk) Texts() []string {
	out := make([]string, len(c.Spans))
	for i, sp := range c.Spans {
		out[i] = sp.Text
	}
	return out
}

// Join concatenates texts with the chunk separator for single-prompt
// backends.
func Join(texts []string) string {
	return strings.Join(texts, Separator)
}

// Split is the inverse of Join, applied to a gateway response.
func Split(joined string) []string {
	return strings.Split(joined, Separator)
}

// Pack groups spans into chunks of at most maxChars runes of joined text.
// Empty and whitespace-only spans carry nothing to translate and are
// dropped. maxChars <= 0 selects DefaultMaxChars.
func Pack(spans []scanner.Span, maxChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks []Chunk
	var cur Chunk

	flush := func() {
		if len(cur.Spans) > 0 {
			chunks = append(chunks, cur)
			cur = Chunk{}
		}
	}

	for _, sp := range spans {
		if strings.TrimSpace(sp.Text) == "" {
			continue
		}
		n := utf8.RuneCountInString(sp.Text)
		need := n
		if len(cur.Spans) > 0 {
			need += separatorLen
		}
		if len(cur.Spans) > 0 && cur.Size+need > maxChars {
			flush()
			need = n
		}
		cur.Spans = append(cur.Spans, sp)
		cur.Size += need
	}
	flush()

	return chunks
}
