package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailKind classifies a gateway failure. Timeout and Unavailable are
// transient and retried with backoff; Protocol means the backend answered
// but broke the alignment contract and is never retried.
type FailKind int

const (
	KindTimeout FailKind = iota
	KindUnavailable
	KindProtocol
)

func (k FailKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a classified backend failure.
type Error struct {
	Backend string
	Kind    FailKind
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func failf(backend string, kind FailKind, format string, args ...any) *Error {
	return &Error{Backend: backend, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// classify wraps a transport error with the right failure kind.
func classify(backend string, err error) *Error {
	kind := KindUnavailable
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	return &Error{Backend: backend, Kind: kind, Err: err}
}

// IsTransient reports whether err is a gateway failure worth retrying.
func IsTransient(err error) bool {
	var ge *Error
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Kind == KindTimeout || ge.Kind == KindUnavailable
}
