package pool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/valpere/codetran/internal/chunker"
	"github.com/valpere/codetran/internal/detector"
	"github.com/valpere/codetran/internal/gateway"
	"github.com/valpere/codetran/internal/profile"
	"github.com/valpere/codetran/internal/rewrite"
	"github.com/valpere/codetran/internal/scanner"
)

// process runs one file through extract, chunk, translate and rewrite.
// Every return path leaves the job in a terminal status; the original
// file on disk is only ever replaced atomically with a complete result.
func (p *Pool) process(ctx context.Context, job *FileJob) {
	buf, err := os.ReadFile(job.Path)
	if err != nil {
		job.Status = StatusSkipped
		job.Reason = fmt.Sprintf("cannot read: %v", err)
		return
	}
	if !utf8.Valid(buf) {
		job.Status = StatusSkipped
		job.Reason = "not valid UTF-8"
		return
	}

	prof, ok := profile.ForExtension(filepath.Ext(job.Path))
	if !ok {
		job.Status = StatusSkipped
		job.Reason = "unsupported file type"
		return
	}

	res, err := scanner.Scan(buf, prof, scanner.Options{TranslateAll: p.cfg.TranslateAll})
	if err != nil {
		job.Status = StatusFailed
		job.Reason = fmt.Sprintf("extraction: %v", err)
		return
	}
	job.Warnings = res.Warnings
	job.Status = StatusExtracted

	spans := p.filterSpans(res.Spans)
	job.SpansFound = len(spans)
	if len(spans) == 0 {
		job.Status = StatusSkipped
		job.Reason = "nothing to translate"
		return
	}

	sourceLang := p.sourceLang(spans)

	// Resolve what we can from the translation memory; only misses go to
	// the gateway.
	translations := make(map[int]string) // index into spans
	var misses []scanner.Span
	missIdx := make(map[scanner.Span]int)
	for i, sp := range spans {
		if cached, ok := p.cacheGet(ctx, sp.Text, sourceLang); ok {
			translations[i] = cached
			continue
		}
		missIdx[sp] = i
		misses = append(misses, sp)
	}

	chunks := chunker.Pack(misses, p.cfg.MaxChunkSize)
	p.translateChunks(ctx, job, chunks, sourceLang, missIdx, translations)
	job.Status = StatusTranslated

	reps := make([]rewrite.Replacement, len(spans))
	for i, sp := range spans {
		text, ok := translations[i]
		reps[i] = rewrite.Replacement{Span: sp, Text: text, Translated: ok}
		if ok {
			job.SpansTranslated++
		}
	}

	// A partially failed file degrades to leaving those spans alone, but
	// when every chunk failed there is no result at all and the job fails.
	if job.SpansTranslated == 0 && job.ChunksFailed > 0 {
		job.Status = StatusFailed
		job.Reason = "translation failed for every chunk"
		return
	}

	out, err := rewrite.Apply(buf, reps)
	if err != nil {
		job.Status = StatusFailed
		job.Reason = fmt.Sprintf("rewrite: %v", err)
		return
	}

	if p.cfg.DryRun {
		job.Diff = rewrite.Diff(job.Path, buf, reps)
		job.Status = StatusRewritten
		return
	}

	if !rewrite.Changed(buf, reps) {
		job.Status = StatusSkipped
		job.Reason = "already translated"
		return
	}

	if err := ctx.Err(); err != nil {
		// Cancelled between translation and write: leave the file alone.
		job.Status = StatusFailed
		job.Reason = "cancelled"
		return
	}
	if err := writeFileAtomic(job.Path, out); err != nil {
		job.Status = StatusFailed
		job.Reason = fmt.Sprintf("write: %v", err)
		return
	}
	job.Status = StatusRewritten
}

// translateChunks fans each chunk out to the gateway. Responses land in
// translations keyed by original span index, so arrival order can never
// reorder the output; a failed chunk just leaves its spans untranslated.
func (p *Pool) translateChunks(ctx context.Context, job *FileJob, chunks []chunker.Chunk, sourceLang string, missIdx map[scanner.Span]int, translations map[int]string) {
	type chunkResult struct {
		chunk      chunker.Chunk
		translated []string
		err        error
	}

	results := make(chan chunkResult, len(chunks))
	var wg sync.WaitGroup
	for _, ch := range chunks {
		wg.Add(1)
		go func(ch chunker.Chunk) {
			defer wg.Done()
			callCtx := ctx
			if p.cfg.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
				defer cancel()
			}
			out, err := p.gw.Translate(callCtx, gateway.Request{
				Texts:      ch.Texts(),
				SourceLang: sourceLang,
				TargetLang: p.cfg.TargetLang,
				Model:      p.cfg.Model,
			})
			results <- chunkResult{chunk: ch, translated: out, err: err}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err == nil && len(r.translated) != len(r.chunk.Spans) {
			r.err = fmt.Errorf("gateway returned %d translations for %d spans", len(r.translated), len(r.chunk.Spans))
		}
		if r.err != nil {
			job.ChunksFailed++
			job.Warnings = append(job.Warnings, fmt.Sprintf("chunk failed: %v", r.err))
			continue
		}
		for i, sp := range r.chunk.Spans {
			if p.det != nil {
				if err := p.det.VerifyTarget(r.translated[i], p.cfg.TargetLang); err != nil {
					job.Warnings = append(job.Warnings, fmt.Sprintf("suspect output: %v", err))
				}
			}
			idx := missIdx[sp]
			translations[idx] = r.translated[i]
			p.cachePut(ctx, sp.Text, sourceLang, r.translated[i])
		}
	}
}

// filterSpans drops spans that need no translation. Unless all-text mode
// is on and when the source language is a CJK one, only spans actually
// containing CJK text go to the backend; pure-ASCII comments are left
// alone.
func (p *Pool) filterSpans(spans []scanner.Span) []scanner.Span {
	if p.cfg.AllText || !cjkSource(p.cfg.SourceLang) {
		return nonEmpty(spans)
	}
	var out []scanner.Span
	for _, sp := range spans {
		if detector.ContainsCJK(sp.Text) {
			out = append(out, sp)
		}
	}
	return out
}

func nonEmpty(spans []scanner.Span) []scanner.Span {
	var out []scanner.Span
	for _, sp := range spans {
		if strings.TrimSpace(sp.Text) != "" {
			out = append(out, sp)
		}
	}
	return out
}

func cjkSource(lang string) bool {
	switch strings.ToLower(lang) {
	case "zh", "ja", "ko", "auto", "chinese", "japanese", "korean":
		return true
	}
	return false
}

// sourceLang resolves the per-file source language when configured as
// auto, sampling the spans' text through the statistical detector.
func (p *Pool) sourceLang(spans []scanner.Span) string {
	lang := p.cfg.SourceLang
	if lang != "auto" || p.det == nil {
		return lang
	}
	var sample strings.Builder
	for _, sp := range spans {
		sample.WriteString(sp.Text)
		sample.WriteByte('\n')
		if sample.Len() > 2000 {
			break
		}
	}
	if iso, ok := p.det.DetectISO(sample.String()); ok {
		return strings.ToLower(iso)
	}
	return lang
}

func (p *Pool) cacheGet(ctx context.Context, text, sourceLang string) (string, bool) {
	if p.cache == nil {
		return "", false
	}
	cached, found, err := p.cache.Get(ctx, text, sourceLang, p.cfg.TargetLang)
	if err != nil || !found {
		return "", false
	}
	return cached, true
}

func (p *Pool) cachePut(ctx context.Context, text, sourceLang, translated string) {
	if p.cache == nil {
		return
	}
	// Cache failures are not worth failing a span over.
	_ = p.cache.Put(ctx, text, sourceLang, p.cfg.TargetLang, translated, p.gw.Name())
}
