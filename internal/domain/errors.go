package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals an invalid option combination or unusable input
	// detected before any scoring starts (min_df/max_df, empty corpus).
	ErrConfiguration = errors.New("configuration error")
	// ErrScoring signals a scorer used in a state that does not allow it.
	ErrScoring = errors.New("scoring error")
	// ErrAlgorithmRuntime signals a failed scorer call inside a comparison run.
	ErrAlgorithmRuntime = errors.New("algorithm runtime error")

	// ErrNotFound signals a missing corpus or report.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a malformed record or request at the boundary.
	ErrInvalidInput = errors.New("invalid input")
)

// AlgorithmRuntimeError wraps ErrAlgorithmRuntime with the failing unit identity.
type AlgorithmRuntimeError struct {
	Algorithm string
	Query     string
	Err       error
}

func (e *AlgorithmRuntimeError) Error() string {
	return fmt.Sprintf("%s: %s on %q: %v", ErrAlgorithmRuntime.Error(), e.Algorithm, e.Query, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *AlgorithmRuntimeError) Unwrap() []error { return []error{ErrAlgorithmRuntime, e.Err} }

// NewAlgorithmRuntime creates an algorithm runtime error.
func NewAlgorithmRuntime(algorithm, query string, err error) error {
	return &AlgorithmRuntimeError{Algorithm: algorithm, Query: query, Err: err}
}
