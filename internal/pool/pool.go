// Package pool drives the per-file pipeline across a directory tree with
// bounded parallelism. Files are independent: a failure in one marks that
// job failed and is counted, but never halts the run. All aggregation
// happens in a single collector goroutine fed by a results channel, so the
// pipeline stages themselves need no locks.
package pool

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/valpere/codetran/internal/config"
	"github.com/valpere/codetran/internal/detector"
	"github.com/valpere/codetran/internal/gateway"
	"github.com/valpere/codetran/internal/store"
)

type Pool struct {
	cfg   *config.Config
	gw    gateway.Gateway
	cache *store.Store       // nil disables the translation memory
	det   *detector.Detector // nil unless source language is auto
	out   io.Writer          // progress and dry-run report sink
}

func New(cfg *config.Config, gw gateway.Gateway, cache *store.Store, det *detector.Detector, out io.Writer) *Pool {
	return &Pool{cfg: cfg, gw: gw, cache: cache, det: det, out: out}
}

// Run discovers candidate files under root and processes them. The
// returned stats are complete even when individual jobs failed; err is
// non-nil only for run-level problems (unreadable root, cancellation
// before any work).
func (p *Pool) Run(ctx context.Context, root string) (*Stats, error) {
	paths, err := Discover(root, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	jobs := make(chan *FileJob)
	results := make(chan *FileJob)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				p.process(ctx, job)
				results <- job
			}
		}()
	}

	// Dispatch stops on cancellation; in-flight jobs run to completion so
	// no file is left half-written.
	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- &FileJob{Path: path, Status: StatusPending}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	stats := &Stats{}
	for job := range results {
		p.collect(stats, job)
	}
	if err := ctx.Err(); err != nil && stats.Scanned == 0 {
		return stats, err
	}
	return stats, nil
}

// collect folds one finished job into the stats and reports it. Runs only
// on the collector goroutine.
func (p *Pool) collect(stats *Stats, job *FileJob) {
	stats.Scanned++
	stats.SpansTranslated += job.SpansTranslated
	stats.ChunksFailed += job.ChunksFailed

	for _, w := range job.Warnings {
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %s", job.Path, w))
	}

	switch job.Status {
	case StatusRewritten:
		stats.Translated++
		if p.cfg.DryRun && job.Diff != "" {
			fmt.Fprint(p.out, job.Diff)
		}
		fmt.Fprintf(p.out, "ok   %s: %d/%d spans translated\n", job.Path, job.SpansTranslated, job.SpansFound)
	case StatusSkipped:
		stats.Skipped++
	case StatusFailed:
		stats.Failed++
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %s", job.Path, job.Reason))
		fmt.Fprintf(p.out, "fail %s: %s\n", job.Path, job.Reason)
	default:
		// A job leaving the pipeline in a non-terminal state is a bug.
		stats.Failed++
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: ended in state %s", job.Path, job.Status))
	}
}
