// Package placeholder shields code-like fragments inside comment text from
// the translation model. Inline code spans, fenced example blocks, URLs and
// markup tags are swapped for numbered markers ([PH0], [PH1], ...) before the
// text is sent out; Restore puts the originals back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// fenced example blocks inside docstrings, may span lines
	reFenced = regexp.MustCompile("(?s)```.*?```")

	// inline code spans: `identifier` or `pkg.Func()`
	reInline = regexp.MustCompile("`[^`]+`")

	// bare URLs, common in comments pointing at issues or docs
	reURL = regexp.MustCompile(`https?://[^\s<>"']+`)

	// markup tags found in javadoc and reST docstrings
	reTag = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

	reMarker = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Protect replaces code-like fragments with numbered markers in the order
// they appear. The returned slice holds the captured originals for Restore.
func Protect(text string) (string, []string) {
	var captured []string
	sub := func(match string) string {
		id := fmt.Sprintf("[PH%d]", len(captured))
		captured = append(captured, match)
		return id
	}

	// Fenced blocks first so their contents are not re-matched piecemeal.
	text = reFenced.ReplaceAllStringFunc(text, sub)
	text = reInline.ReplaceAllStringFunc(text, sub)
	text = reURL.ReplaceAllStringFunc(text, sub)
	text = reTag.ReplaceAllStringFunc(text, sub)

	return text, captured
}

// Restore substitutes [PHn] markers back with the fragments captured by
// Protect. Markers the model dropped are simply absent from the result;
// indices Protect never issued are left as-is.
func Restore(text string, captured []string) string {
	return reMarker.ReplaceAllStringFunc(text, func(match string) string {
		m := reMarker.FindStringSubmatch(match)
		if len(m) < 2 {
			return match
		}
		idx := 0
		fmt.Sscanf(m[1], "%d", &idx)
		if idx < 0 || idx >= len(captured) {
			return match
		}
		return captured[idx]
	})
}

// InstructionHint is appended to model prompts so markers survive translation.
func InstructionHint() string {
	return "Keep every [PHn] marker exactly where it appears; never translate or remove them."
}

// Missing reports the indices of markers that the model dropped from text.
func Missing(text string, captured []string) []int {
	var missing []int
	for i := range captured {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}
