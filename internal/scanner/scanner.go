// Package scanner extracts translatable spans from a source buffer using a
// language profile. It is a single forward pass over the bytes with a small
// explicit state machine: code, line comment, block comment (with depth),
// docstring, string. Only the comment, docstring and (in translate-all
// mode) string states produce spans; code text is never emitted.
package scanner

import (
	"bytes"
	"fmt"

	"github.com/valpere/codetran/internal/profile"
)

// Span is a contiguous byte range of the scanned buffer holding the body of
// one comment, docstring or string literal. Offsets exclude the delimiters,
// so replacing Text in place preserves the surrounding markers.
type Span struct {
	Start int
	End   int
	Kind  profile.SpanKind
	Text  string
}

// Result carries the ordered span list plus any non-fatal warnings, such as
// a construct left open at end of file.
type Result struct {
	Spans    []Span
	Warnings []string
}

// Options control extraction behavior.
type Options struct {
	// TranslateAll emits string-literal contents as spans. Off by default:
	// strings are still consumed (so comment markers inside them are never
	// misread) but their text is preserved.
	TranslateAll bool
}

// Scan runs the state machine over buf and returns the ordered,
// non-overlapping span list. Unterminated constructs at end of file are
// closed implicitly and reported as warnings, not errors.
func Scan(buf []byte, p *profile.Profile, opts Options) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("scan: nil profile")
	}
	s := &scan{buf: buf, p: p, opts: opts}
	s.run()
	return &Result{Spans: s.spans, Warnings: s.warnings}, nil
}

type scan struct {
	buf      []byte
	p        *profile.Profile
	opts     Options
	pos      int
	spans    []Span
	warnings []string
}

func (s *scan) run() {
	for s.pos < len(s.buf) {
		switch {
		case s.tryDocstring():
		case s.tryString():
		case s.tryBlockComment():
		case s.tryLineComment():
		default:
			s.pos++
		}
	}
}

func (s *scan) rest() []byte { return s.buf[s.pos:] }

func (s *scan) emit(start, end int, kind profile.SpanKind) {
	s.spans = append(s.spans, Span{
		Start: start,
		End:   end,
		Kind:  kind,
		Text:  string(s.buf[start:end]),
	})
}

// tryDocstring matches docstring block forms. These are checked before
// strings and plain block comments so the longer marker wins: Python """
// beats ", Java /** beats /*.
func (s *scan) tryDocstring() bool {
	for _, d := range s.p.Docstrings {
		if !bytes.HasPrefix(s.rest(), []byte(d.Open)) {
			continue
		}
		// An empty /**/ is a block comment, not a doc block.
		if d.Open == "/**" && bytes.HasPrefix(s.rest(), []byte("/**/")) {
			continue
		}
		bodyStart := s.pos + len(d.Open)
		close := bytes.Index(s.buf[bodyStart:], []byte(d.Close))
		if close < 0 {
			s.warnf("unterminated docstring opened at offset %d", s.pos)
			s.emit(bodyStart, len(s.buf), profile.Docstring)
			s.pos = len(s.buf)
			return true
		}
		s.emit(bodyStart, bodyStart+close, profile.Docstring)
		s.pos = bodyStart + close + len(d.Close)
		return true
	}
	return false
}

// tryString consumes a string literal. In translate-all mode the contents
// become a span; otherwise they are skipped, which is what suppresses
// comment markers inside literals.
func (s *scan) tryString() bool {
	for _, d := range s.p.Strings {
		if !bytes.HasPrefix(s.rest(), []byte(d.Quote)) {
			continue
		}
		bodyStart := s.pos + len(d.Quote)
		end, closed := s.findStringEnd(bodyStart, d)
		if s.opts.TranslateAll {
			s.emit(bodyStart, end, profile.StringLiteral)
		}
		if closed {
			s.pos = end + len(d.Quote)
		} else {
			// Implicitly closed at end of line or end of buffer.
			s.pos = end
			if end == len(s.buf) && d.Multiline {
				s.warnf("unterminated string opened at offset %d", bodyStart-len(d.Quote))
			}
		}
		return true
	}
	return false
}

// findStringEnd scans from bodyStart for the matching unescaped closer.
// The escape character suppresses delimiter matching for the following
// character only. Single-line forms stop at the newline.
func (s *scan) findStringEnd(bodyStart int, d profile.StringDelim) (end int, closed bool) {
	i := bodyStart
	for i < len(s.buf) {
		c := s.buf[i]
		if d.Escape != 0 && c == d.Escape && i+1 < len(s.buf) {
			i += 2
			continue
		}
		if !d.Multiline && c == '\n' {
			if i > bodyStart && s.buf[i-1] == '\r' {
				return i - 1, false
			}
			return i, false
		}
		if bytes.HasPrefix(s.buf[i:], []byte(d.Quote)) {
			return i, true
		}
		i++
	}
	return len(s.buf), false
}

func (s *scan) tryBlockComment() bool {
	for _, d := range s.p.BlockComments {
		if !bytes.HasPrefix(s.rest(), []byte(d.Open)) {
			continue
		}
		bodyStart := s.pos + len(d.Open)
		end, closed := s.findBlockEnd(bodyStart, d)
		s.emit(bodyStart, end, profile.BlockComment)
		if closed {
			s.pos = end + len(d.Close)
		} else {
			s.warnf("unterminated block comment opened at offset %d", s.pos)
			s.pos = len(s.buf)
		}
		return true
	}
	return false
}

// findBlockEnd locates the closing delimiter. Nesting languages balance
// inner openers; the rest close on the first closer regardless of further
// openers.
func (s *scan) findBlockEnd(bodyStart int, d profile.BlockDelim) (end int, closed bool) {
	depth := 1
	i := bodyStart
	for i < len(s.buf) {
		if d.Nest && bytes.HasPrefix(s.buf[i:], []byte(d.Open)) {
			depth++
			i += len(d.Open)
			continue
		}
		if bytes.HasPrefix(s.buf[i:], []byte(d.Close)) {
			depth--
			if depth == 0 {
				return i, true
			}
			i += len(d.Close)
			continue
		}
		i++
	}
	return len(s.buf), false
}

func (s *scan) tryLineComment() bool {
	// Doc forms first: /// must win over //.
	for _, m := range s.p.DocLineComments {
		if bytes.HasPrefix(s.rest(), []byte(m)) {
			s.consumeToEOL(s.pos+len(m), profile.Docstring)
			return true
		}
	}
	for _, m := range s.p.LineComments {
		if bytes.HasPrefix(s.rest(), []byte(m)) {
			s.consumeToEOL(s.pos+len(m), profile.LineComment)
			return true
		}
	}
	return false
}

// consumeToEOL emits a span from bodyStart to the end of the line,
// exclusive of the newline (and of the \r in CRLF files).
func (s *scan) consumeToEOL(bodyStart int, kind profile.SpanKind) {
	end := bytes.IndexByte(s.buf[bodyStart:], '\n')
	if end < 0 {
		s.emit(bodyStart, len(s.buf), kind)
		s.pos = len(s.buf)
		return
	}
	end += bodyStart
	if end > bodyStart && s.buf[end-1] == '\r' {
		end--
	}
	s.emit(bodyStart, end, kind)
	s.pos = end
}

func (s *scan) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}
