package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryError_Error(t *testing.T) {
	cause := errors.New("upstream said no")

	tests := []struct {
		name string
		err  *SummaryError
		want string
	}{
		{
			"bare",
			NewSummaryError(ErrKindContextOverflow, "prompt exceeds budget", nil),
			"[context_overflow] prompt exceeds budget",
		},
		{
			"with cause",
			NewSummaryError(ErrKindUnknown, "call failed", cause),
			"[unknown] call failed: upstream said no",
		},
		{
			"chunk attributed",
			NewChunkError(ErrKindThrottled, 3, 2, "rate limited", nil),
			"[throttled] chunk 3 (attempt 2): rate limited",
		},
		{
			"chunk with cause",
			NewChunkError(ErrKindTimeout, 0, 1, "call timed out", cause),
			"[timeout] chunk 0 (attempt 1): call timed out: upstream said no",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestSummaryError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewSummaryError(ErrKindTimeout, "timed out", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, -1, err.ChunkIndex)
}

func TestSummaryError_IsRetryable(t *testing.T) {
	retryable := map[ErrorKind]bool{
		ErrKindInvalidInput:        false,
		ErrKindAccessDenied:        false,
		ErrKindThrottled:           true,
		ErrKindTimeout:             true,
		ErrKindContextOverflow:     false,
		ErrKindReductionDivergence: false,
		ErrKindCancelled:           false,
		ErrKindUnknown:             true,
	}

	for kind, want := range retryable {
		err := NewSummaryError(kind, "x", nil)
		assert.Equal(t, want, err.IsRetryable(), "kind %s", kind)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, ErrKindThrottled, KindOf(NewSummaryError(ErrKindThrottled, "x", nil)))
	assert.Equal(t, ErrKindAccessDenied,
		KindOf(fmt.Errorf("wrapped: %w", NewSummaryError(ErrKindAccessDenied, "x", nil))))
	assert.Equal(t, ErrKindCancelled, KindOf(context.Canceled))
	assert.Equal(t, ErrKindTimeout, KindOf(context.DeadlineExceeded))
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("anything else")))
}
