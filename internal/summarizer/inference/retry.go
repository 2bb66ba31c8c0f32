package inference

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lk2023060901/doc-summarizer/internal/pkg/logger"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// RetryPolicy bounds the local retry loop around one inference call.
// Retry state is per-call; nothing here is shared across calls.
type RetryPolicy struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Jitter      float64       `mapstructure:"jitter"`
}

// DefaultRetryPolicy retries transient failures up to 3 attempts with
// exponential backoff from 500ms and jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Jitter:      0.5,
	}
}

// WithDefaults fills zero fields from DefaultRetryPolicy.
func (p RetryPolicy) WithDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.Jitter <= 0 {
		p.Jitter = d.Jitter
	}
	return p
}

// RetryClient decorates a Client with exponential-backoff retries for
// transient failures. AccessDenied and InvalidInput are terminal and
// propagate immediately; only Throttled, Timeout and retriable Unknown
// failures re-enter the loop.
type RetryClient struct {
	inner  Client
	policy RetryPolicy
	logger *logger.Logger
}

// NewRetryClient wraps inner with the given policy.
func NewRetryClient(inner Client, policy RetryPolicy, lgr *logger.Logger) *RetryClient {
	if lgr == nil {
		lgr = logger.L()
	}
	return &RetryClient{
		inner:  inner,
		policy: policy.WithDefaults(),
		logger: lgr,
	}
}

// Generate calls the inner client, retrying transient failures. The
// returned Generation reports the total attempt count and wall-clock time
// across all attempts.
func (c *RetryClient) Generate(ctx context.Context, req *types.InferenceRequest) (*types.Generation, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.policy.BaseDelay
	bo.MaxInterval = c.policy.MaxDelay
	bo.RandomizationFactor = c.policy.Jitter
	bo.Reset()

	start := time.Now()
	attempts := 0

	operation := func() (*types.Generation, error) {
		attempts++
		gen, err := c.inner.Generate(ctx, req)
		if err == nil {
			return gen, nil
		}

		var se *types.SummaryError
		if errors.As(err, &se) && !se.IsRetryable() {
			return nil, backoff.Permanent(err)
		}

		c.logger.Warn("transient inference failure",
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", c.policy.MaxAttempts),
			zap.String("kind", string(types.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	gen, err := backoff.RetryWithData(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.policy.MaxAttempts-1)), ctx))
	if err != nil {
		var se *types.SummaryError
		if errors.As(err, &se) {
			se.Attempt = attempts
			return nil, se
		}
		if ctx.Err() != nil {
			return nil, types.NewSummaryError(types.ErrKindCancelled, "inference call cancelled", err)
		}
		return nil, types.NewSummaryError(types.ErrKindUnknown, "inference call failed", err)
	}

	gen.Attempts = attempts
	gen.Elapsed = time.Since(start)
	return gen, nil
}
