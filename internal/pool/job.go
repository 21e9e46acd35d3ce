package pool

// Status is a FileJob's position in its lifecycle. Jobs end as Rewritten
// (file written, or diff emitted in dry-run), Skipped (nothing to do) or
// Failed (pipeline error, file untouched).
type Status int

const (
	StatusPending Status = iota
	StatusExtracted
	StatusTranslated
	StatusRewritten
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusExtracted:
		return "extracted"
	case StatusTranslated:
		return "translated"
	case StatusRewritten:
		return "rewritten"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileJob tracks one file through the pipeline. A job is owned by exactly
// one worker; nothing here is shared.
type FileJob struct {
	Path   string
	Status Status

	// Reason explains a skip or failure.
	Reason string

	// SpansFound counts translatable spans after filtering; SpansTranslated
	// counts those actually replaced. ChunksFailed counts gateway calls
	// that gave up after retries; their spans stay untranslated.
	SpansFound      int
	SpansTranslated int
	ChunksFailed    int

	Warnings []string

	// Diff holds the dry-run report; empty outside dry-run.
	Diff string
}

// Stats aggregates a run. It is only ever mutated by the collector
// goroutine; workers communicate through the results channel.
type Stats struct {
	Scanned         int
	Translated      int
	Skipped         int
	Failed          int
	SpansTranslated int
	ChunksFailed    int
	Errors          []string
}
