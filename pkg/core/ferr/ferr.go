// Package ferr defines the error-kind taxonomy shared across the ingestion
// and report-orchestration subsystems.
package ferr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can decide whether to retry, skip a
// workflow node, or surface the failure verbatim.
type Kind string

const (
	NotFound          Kind = "not_found"
	TransientUpstream Kind = "transient_upstream"
	PermanentUpstream Kind = "permanent_upstream"
	Precondition      Kind = "precondition"
	InvalidInput      Kind = "invalid_input"
	Cancelled         Kind = "cancelled"
	Internal          Kind = "internal"
)

// Error wraps an underlying error with a Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Kind-tagged error for op, wrapping err (which may be nil).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to Internal when err does
// not carry one.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if err == nil {
		return ""
	}
	return Internal
}
