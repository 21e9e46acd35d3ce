// Package gateway abstracts the translation backend. The pipeline hands a
// chunk's texts to a Gateway and gets back translations aligned 1:1 with
// the request, or a classified failure. Swapping backends never touches
// the scanner, chunker or rewriter.
package gateway

import "context"

// Request is one translation call: the ordered texts of a single chunk
// plus language pair and model selection.
type Request struct {
	Texts      []string
	SourceLang string
	TargetLang string
	Model      string
}

// Gateway is the backend capability. Translate returns exactly
// len(req.Texts) strings in request order; anything else is a protocol
// error. Implementations must honor ctx cancellation and deadlines.
type Gateway interface {
	Name() string
	Translate(ctx context.Context, req Request) ([]string, error)
}
