package gateway

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Google is a backend over the Cloud Translation API. It passes the chunk
// texts natively as an ordered slice, so no separator is involved; the API
// contract already aligns results with inputs.
type Google struct {
	credentials string
}

// NewGoogle creates the backend. credentials is an optional service
// account file path; empty falls back to application default credentials.
func NewGoogle(credentials string) *Google {
	return &Google{credentials: credentials}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Translate(ctx context.Context, req Request) ([]string, error) {
	if len(req.Texts) == 0 {
		return nil, nil
	}
	target, err := language.Parse(req.TargetLang)
	if err != nil {
		return nil, failf(g.Name(), KindProtocol, "invalid target language %q: %w", req.TargetLang, err)
	}

	var opts []option.ClientOption
	if g.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentials))
	}
	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, classify(g.Name(), fmt.Errorf("create client: %w", err))
	}
	defer client.Close()

	var transOpts *translate.Options
	if req.SourceLang != "" && req.SourceLang != "auto" {
		source, err := language.Parse(req.SourceLang)
		if err != nil {
			return nil, failf(g.Name(), KindProtocol, "invalid source language %q: %w", req.SourceLang, err)
		}
		transOpts = &translate.Options{Source: source}
	}

	translations, err := client.Translate(ctx, req.Texts, target, transOpts)
	if err != nil {
		return nil, classify(g.Name(), err)
	}
	if len(translations) != len(req.Texts) {
		return nil, failf(g.Name(), KindProtocol,
			"response has %d translations, request had %d", len(translations), len(req.Texts))
	}

	out := make([]string, len(translations))
	for i, tr := range translations {
		out[i] = tr.Text
	}
	return out, nil
}
