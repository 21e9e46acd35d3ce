package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/codetran/internal/chunker"
	"github.com/valpere/codetran/internal/placeholder"
	"github.com/valpere/codetran/internal/postprocess"
)

const (
	// DefaultOllamaURL is the local Ollama server address.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultOllamaModel is a small model fast enough for bulk comment
	// translation.
	DefaultOllamaModel = "qwen2.5:1.5b"
)

// Ollama is a prompt-based backend against a local Ollama server. Chunk
// texts are joined with the chunk separator into one prompt; the response
// is split by the same separator. A response that does not preserve the
// separators is a protocol error, never patched up by guesswork.
type Ollama struct {
	baseURL string
	client  *http.Client
}

// NewOllama creates the backend. An empty baseURL selects
// DefaultOllamaURL; timeout <= 0 means no client-level timeout (the
// per-call context still applies).
func NewOllama(baseURL string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &Ollama{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Translate(ctx context.Context, req Request) ([]string, error) {
	if len(req.Texts) == 0 {
		return nil, nil
	}
	model := req.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "the source language"
	}

	// Shield code spans, URLs and markup from the model before joining.
	protected := make([]string, len(req.Texts))
	captured := make([][]string, len(req.Texts))
	for i, text := range req.Texts {
		protected[i], captured[i] = placeholder.Protect(text)
	}

	joined := chunker.Join(protected)
	prompt := fmt.Sprintf(`Translate the following %d text segments from %s to %s.
Segments are separated by the marker line %q. Keep every marker exactly as it is.
Translate only the text between markers, preserving line breaks, leading whitespace
and any code punctuation. %s Respond with the translated segments separated by the
same markers, and nothing else.

%s`, len(req.Texts), sourceLang, req.TargetLang, "@@__CODETRAN_SPLIT__@@",
		placeholder.InstructionHint(), joined)

	body, err := json.Marshal(map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": 0.3,
		},
	})
	if err != nil {
		return nil, failf(o.Name(), KindProtocol, "marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, failf(o.Name(), KindProtocol, "build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, classify(o.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind := KindProtocol
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			kind = KindUnavailable
		}
		return nil, failf(o.Name(), kind, "server returned status %d", resp.StatusCode)
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, failf(o.Name(), KindProtocol, "decode response: %w", err)
	}

	parts := chunker.Split(out.Response)
	if len(parts) != len(req.Texts) {
		return nil, failf(o.Name(), KindProtocol,
			"response has %d segments, request had %d", len(parts), len(req.Texts))
	}
	for i := range parts {
		cleaned := postprocess.Clean(parts[i])
		cleaned = placeholder.Restore(cleaned, captured[i])
		// Cleaning trims the segment; put the original whitespace framing
		// back so indentation around comment bodies survives.
		lead, trail := framing(req.Texts[i])
		parts[i] = lead + cleaned + trail
	}
	return parts, nil
}

func framing(s string) (lead, trail string) {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	lead = s[:len(s)-len(trimmed)]
	trimmed = strings.TrimRight(trimmed, " \t\r\n")
	trail = s[len(lead)+len(trimmed):]
	return lead, trail
}

// Model describes one locally available Ollama model.
type Model struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ListModels queries the server for locally available models.
func (o *Ollama) ListModels(ctx context.Context) ([]Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, failf(o.Name(), KindProtocol, "build request: %w", err)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, classify(o.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, failf(o.Name(), KindUnavailable, "server returned status %d", resp.StatusCode)
	}

	var out struct {
		Models []Model `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, failf(o.Name(), KindProtocol, "decode response: %w", err)
	}
	return out.Models, nil
}
