package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingVideoID reports a recognized fenced reference block that has
	// no video: line. The surrounding markup is left unmodified.
	ErrMissingVideoID = errors.New("missing video ID in reference block")

	// ErrPhaseOrder reports pipeline phases invoked out of order, or with a
	// prerequisite phase skipped. It is a configuration error of the build,
	// never fatal to content generation.
	ErrPhaseOrder = errors.New("pipeline phases invoked out of order")
)

// ResolveKind classifies why a resolution attempt failed.
type ResolveKind string

const (
	KindNetwork ResolveKind = "network"
	KindTimeout ResolveKind = "timeout"
	KindDecode  ResolveKind = "decode"
)

// ResolveError is a failed upstream resolution for a single video ID. A
// failed resolution never mutates the cache; the reference is left
// unresolved for this build.
type ResolveError struct {
	ID   string
	Kind ResolveKind
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving video %s: %s error: %v", e.ID, e.Kind, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// NewResolveError wraps err as a ResolveError of the given kind.
func NewResolveError(id string, kind ResolveKind, err error) *ResolveError {
	return &ResolveError{ID: id, Kind: kind, Err: err}
}

// ResolveKindOf returns the classification of err if it is (or wraps) a
// ResolveError, and "" otherwise.
func ResolveKindOf(err error) ResolveKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
