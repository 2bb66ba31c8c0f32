package types

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a summarization failure.
type ErrorKind string

const (
	// Configuration / authorization problems. Never retried: retrying
	// cannot change the outcome.
	ErrKindInvalidInput ErrorKind = "invalid_input"
	ErrKindAccessDenied ErrorKind = "access_denied"

	// Transient faults, retried locally inside the inference client.
	ErrKindThrottled ErrorKind = "throttled"
	ErrKindTimeout   ErrorKind = "timeout"

	// Budget / reduction failures. Always terminal.
	ErrKindContextOverflow     ErrorKind = "context_overflow"
	ErrKindReductionDivergence ErrorKind = "reduction_divergence"

	ErrKindCancelled ErrorKind = "cancelled"
	ErrKindUnknown   ErrorKind = "unknown"
)

// SummaryError is the single structured error surfaced by the engine. It
// carries enough context (chunk, attempt, underlying kind) to diagnose a
// failed run without re-running it.
type SummaryError struct {
	Kind       ErrorKind
	Message    string
	ChunkIndex int // -1 when the failure is not tied to one chunk
	Attempt    int // last attempt number, 0 when no call was made
	Err        error
}

func (e *SummaryError) Error() string {
	switch {
	case e.ChunkIndex >= 0 && e.Err != nil:
		return fmt.Sprintf("[%s] chunk %d (attempt %d): %s: %v",
			e.Kind, e.ChunkIndex, e.Attempt, e.Message, e.Err)
	case e.ChunkIndex >= 0:
		return fmt.Sprintf("[%s] chunk %d (attempt %d): %s",
			e.Kind, e.ChunkIndex, e.Attempt, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
}

func (e *SummaryError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the inference layer may retry this failure.
func (e *SummaryError) IsRetryable() bool {
	switch e.Kind {
	case ErrKindThrottled, ErrKindTimeout, ErrKindUnknown:
		return true
	default:
		return false
	}
}

// NewSummaryError creates an error not tied to a specific chunk.
func NewSummaryError(kind ErrorKind, message string, err error) *SummaryError {
	return &SummaryError{
		Kind:       kind,
		Message:    message,
		ChunkIndex: -1,
		Err:        err,
	}
}

// NewChunkError creates an error attributed to one chunk call.
func NewChunkError(kind ErrorKind, chunkIndex, attempt int, message string, err error) *SummaryError {
	return &SummaryError{
		Kind:       kind,
		Message:    message,
		ChunkIndex: chunkIndex,
		Attempt:    attempt,
		Err:        err,
	}
}

// KindOf extracts the ErrorKind from any error chain. Unclassified errors
// report ErrKindUnknown; context cancellation reports ErrKindCancelled.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var se *SummaryError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.Canceled) {
		return ErrKindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrKindTimeout
	}
	return ErrKindUnknown
}
