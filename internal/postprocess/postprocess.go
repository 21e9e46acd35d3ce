// Package postprocess strips chat-model artifacts from translated comment
// text: leaked reasoning blocks, "Here is the translation:" preambles and
// gratuitous outer quotes. Applied to each segment returned by an LLM backend
// before the text goes back into a source file.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean returns text with model artifacts removed and whitespace trimmed.
func Clean(text string) string {
	text = stripReasoning(text)
	text = stripPreamble(text)
	text = stripOuterQuotes(text)
	return strings.TrimSpace(text)
}

// reasoningRe matches closed reasoning blocks. RE2 has no backreferences, so
// each tag variant is spelled out.
var reasoningRe = regexp.MustCompile(
	`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>`,
)

// openReasoningRe catches a reasoning tag the model never closed.
var openReasoningRe = regexp.MustCompile(`(?is)(?:<think>|<thinking>|<reasoning>).*$`)

func stripReasoning(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(openReasoningRe.ReplaceAllString(text, ""))
}

// preambleRe matches introductions models prepend despite instructions.
// Anchored at the start and requiring a colon to avoid eating real content.
var preambleRe = regexp.MustCompile(
	`(?i)^(?:(?:certainly|sure|of course)[,.]?\s*)?(?:here(?:'s| is)(?: the)?\s*)?(?:translated text|translation)\s*:`,
)

func stripPreamble(text string) string {
	if loc := preambleRe.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[1]:])
	}
	return text
}

var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'“', '”'},
	{'‘', '’'},
	{'«', '»'},
}

// stripOuterQuotes removes one matching pair of quotes wrapping the whole
// text. Quotes inside the text are left alone.
func stripOuterQuotes(text string) string {
	r := []rune(text)
	if len(r) < 2 {
		return text
	}
	for _, p := range quotePairs {
		if r[0] == p[0] && r[len(r)-1] == p[1] {
			return strings.TrimSpace(string(r[1 : len(r)-1]))
		}
	}
	return text
}
