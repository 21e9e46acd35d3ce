// Package profile holds the per-language lexical profiles that drive span
// extraction. A profile is static data describing how one language spells
// its comments, docstrings and string literals; the scanner interprets the
// data and never branches on the language name. Adding a language means
// adding a profile here, nothing else.
package profile

import (
	"sort"
	"strings"
)

// SpanKind classifies what produced a span.
type SpanKind int

const (
	LineComment SpanKind = iota
	BlockComment
	Docstring
	StringLiteral
)

func (k SpanKind) String() string {
	switch k {
	case LineComment:
		return "line_comment"
	case BlockComment:
		return "block_comment"
	case Docstring:
		return "docstring"
	case StringLiteral:
		return "string_literal"
	default:
		return "unknown"
	}
}

// BlockDelim is a paired open/close delimiter. Nest controls whether the
// scanner balances nested openers (Rust block comments) or closes on the
// first closer (C family).
type BlockDelim struct {
	Open  string
	Close string
	Nest  bool
}

// StringDelim describes one string-literal form. Escape is the escape
// character, or zero for raw strings (Go backticks) where no character
// suppresses the closer. Single-line forms are implicitly closed at the
// end of the line; Multiline forms run until their closer.
type StringDelim struct {
	Quote     string
	Escape    byte
	Multiline bool
}

// Profile is the full lexical rule set for one language.
type Profile struct {
	Language string

	// DocLineComments are checked before LineComments so that a doc form
	// sharing a prefix with the plain form (Rust /// vs //) wins.
	LineComments    []string
	DocLineComments []string

	BlockComments []BlockDelim

	// Docstrings are block forms whose body is documentation rather than a
	// plain comment (Python triple quotes, Javadoc /** */). Checked before
	// BlockComments and Strings so the longer marker wins.
	Docstrings []BlockDelim

	Strings []StringDelim
}

// ForExtension returns the profile registered for a file extension
// (including the leading dot, case-insensitive). The second return is
// false when the extension maps to no supported language.
func ForExtension(ext string) (*Profile, bool) {
	lang, ok := extensions[strings.ToLower(ext)]
	if !ok {
		return nil, false
	}
	p, ok := registry[lang]
	return p, ok
}

// Languages returns the names of all registered languages.
func Languages() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
