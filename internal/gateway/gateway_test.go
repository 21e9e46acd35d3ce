package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/valpere/codetran/internal/chunker"
)

func ollamaServer(t *testing.T, handler http.HandlerFunc) *Ollama {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllama(srv.URL, 5*time.Second)
}

func TestOllamaTranslate_Aligned(t *testing.T) {
	o := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
			Model  string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"response": chunker.Join([]string{"uno", "dos"}),
		})
	})

	got, err := o.Translate(context.Background(), Request{
		Texts:      []string{"one", "two"},
		SourceLang: "en",
		TargetLang: "es",
		Model:      "test-model",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if len(got) != 2 || got[0] != "uno" || got[1] != "dos" {
		t.Errorf("got %v", got)
	}
}

func TestOllamaTranslate_ProtectsCodeSpans(t *testing.T) {
	var prompt string
	o := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Prompt
		json.NewEncoder(w).Encode(map[string]string{
			"response": "call [PH0] to parse",
		})
	})

	got, err := o.Translate(context.Background(), Request{
		Texts: []string{"调用 `Scan()` 解析"}, SourceLang: "zh", TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if strings.Contains(prompt, "Scan()") {
		t.Error("code span reached the model unprotected")
	}
	if got[0] != "call `Scan()` to parse" {
		t.Errorf("got %q, want code span restored", got[0])
	}
}

func TestOllamaTranslate_CleansArtifactsKeepsFraming(t *testing.T) {
	o := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"response": `Translation: "the comment"`,
		})
	})

	got, err := o.Translate(context.Background(), Request{
		Texts: []string{" 注释文字 \n"}, SourceLang: "zh", TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got[0] != " the comment \n" {
		t.Errorf("got %q, want artifacts stripped and whitespace framing kept", got[0])
	}
}

func TestOllamaTranslate_SeparatorLost(t *testing.T) {
	o := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "merged into one"})
	})

	_, err := o.Translate(context.Background(), Request{
		Texts: []string{"one", "two"}, TargetLang: "es",
	})
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ge.Kind != KindProtocol {
		t.Errorf("kind = %v, want protocol", ge.Kind)
	}
	if IsTransient(err) {
		t.Error("protocol errors must not be transient")
	}
}

func TestOllamaTranslate_ServerError(t *testing.T) {
	o := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := o.Translate(context.Background(), Request{Texts: []string{"x"}, TargetLang: "en"})
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ge.Kind != KindUnavailable {
		t.Errorf("kind = %v, want unavailable", ge.Kind)
	}
	if !IsTransient(err) {
		t.Error("5xx should be transient")
	}
}

func TestOllamaTranslate_ConnectionRefused(t *testing.T) {
	o := NewOllama("http://127.0.0.1:1", 2*time.Second)
	_, err := o.Translate(context.Background(), Request{Texts: []string{"x"}, TargetLang: "en"})
	if !IsTransient(err) {
		t.Errorf("connection refused should be transient, got %v", err)
	}
}

func TestOllamaTranslate_EmptyRequest(t *testing.T) {
	o := NewOllama("http://127.0.0.1:1", time.Second)
	out, err := o.Translate(context.Background(), Request{TargetLang: "en"})
	if err != nil || out != nil {
		t.Errorf("empty request should be a no-op, got %v, %v", out, err)
	}
}

func TestOllamaListModels(t *testing.T) {
	o := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "qwen2.5:1.5b", "size": 1000000},
				{"name": "llama3.2", "size": 2000000},
			},
		})
	})

	models, err := o.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list models failed: %v", err)
	}
	if len(models) != 2 || models[0].Name != "qwen2.5:1.5b" {
		t.Errorf("got %+v", models)
	}
}

// flaky fails with a transient error a fixed number of times, then
// succeeds.
type flaky struct {
	failures int
	calls    int
}

func (f *flaky) Name() string { return "flaky" }

func (f *flaky) Translate(_ context.Context, req Request) ([]string, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, &Error{Backend: "flaky", Kind: KindUnavailable, Err: errors.New("down")}
	}
	out := make([]string, len(req.Texts))
	copy(out, req.Texts)
	return out, nil
}

func TestRetry_EventualSuccess(t *testing.T) {
	f := &flaky{failures: 2}
	r := WithRetry(f, 3)
	r.baseDelay = time.Millisecond

	out, err := r.Translate(context.Background(), Request{Texts: []string{"a"}, TargetLang: "en"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}
	if len(out) != 1 || out[0] != "a" {
		t.Errorf("got %v", out)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	f := &flaky{failures: 10}
	r := WithRetry(f, 3)
	r.baseDelay = time.Millisecond

	_, err := r.Translate(context.Background(), Request{Texts: []string{"a"}, TargetLang: "en"})
	if err == nil {
		t.Fatal("expected failure")
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}
}

// broken always fails with a protocol error.
type broken struct{ calls int }

func (b *broken) Name() string { return "broken" }

func (b *broken) Translate(context.Context, Request) ([]string, error) {
	b.calls++
	return nil, &Error{Backend: "broken", Kind: KindProtocol, Err: errors.New("bad shape")}
}

func TestRetry_ProtocolErrorNotRetried(t *testing.T) {
	b := &broken{}
	r := WithRetry(b, 5)
	r.baseDelay = time.Millisecond

	_, err := r.Translate(context.Background(), Request{Texts: []string{"a"}, TargetLang: "en"})
	if err == nil {
		t.Fatal("expected failure")
	}
	if b.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on protocol errors)", b.calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	f := &flaky{failures: 10}
	r := WithRetry(f, 5)
	r.baseDelay = 10 * time.Second // the cancel must win, not the backoff

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Translate(ctx, Request{Texts: []string{"a"}, TargetLang: "en"})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retry loop did not honor cancellation")
	}
}

func TestEcho(t *testing.T) {
	out, err := Echo{}.Translate(context.Background(), Request{Texts: []string{"x", "y"}, TargetLang: "en"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != "x" || out[1] != "y" {
		t.Errorf("got %v", out)
	}
}

func TestErrorString(t *testing.T) {
	e := &Error{Backend: "ollama", Kind: KindTimeout, Err: errors.New("deadline")}
	if e.Error() != "ollama: timeout: deadline" {
		t.Errorf("got %q", e.Error())
	}
}
