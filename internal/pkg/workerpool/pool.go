package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// TaskResult carries the outcome of a task submitted with SubmitWithResult.
type TaskResult struct {
	Data  interface{}
	Error error
}

// Config bounds the pool. MaxWorkers is the hard cap on in-flight tasks;
// a retried call runs inside its original task and therefore never takes
// a second slot.
type Config struct {
	MaxWorkers int
}

// DefaultConfig allows 4 concurrent tasks, a conservative bound for
// rate-limited remote endpoints.
func DefaultConfig() *Config {
	return &Config{MaxWorkers: 4}
}

// Statistics is a point-in-time snapshot of pool activity.
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
}

type statistics struct {
	mu   sync.RWMutex
	snap Statistics
}

func (s *statistics) incSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Submitted++
}

func (s *statistics) incCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Completed++
}

func (s *statistics) incFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Failed++
}

func (s *statistics) get() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Pool is a bounded worker pool over ants. Submit blocks while all workers
// are busy, which is what enforces the max-in-flight budget.
type Pool struct {
	pool   *ants.Pool
	config *Config

	ctx    context.Context
	cancel context.CancelFunc

	stats  *statistics
	logger *zap.Logger
}

// New creates a pool with MaxWorkers concurrent workers.
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxWorkers <= 0 {
		return nil, fmt.Errorf("max workers must be positive, got %d", config.MaxWorkers)
	}

	antsPool, err := ants.NewPool(config.MaxWorkers,
		ants.WithPanicHandler(func(v interface{}) {
			logger.Error("worker panic", zap.Any("error", v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		pool:   antsPool,
		config: config,
		ctx:    ctx,
		cancel: cancel,
		stats:  &statistics{},
		logger: logger,
	}, nil
}

// Submit schedules a task, blocking until a worker is free.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.ctx.Done():
		return ErrPoolClosed
	default:
	}

	p.stats.incSubmitted()
	return p.pool.Submit(func() {
		task()
		p.stats.incCompleted()
	})
}

// SubmitWithResult schedules a task and returns a channel that yields its
// result exactly once.
func (p *Pool) SubmitWithResult(task func() (interface{}, error)) <-chan TaskResult {
	resultCh := make(chan TaskResult, 1)

	err := p.Submit(func() {
		data, err := task()
		if err != nil {
			p.stats.incFailed()
		}
		resultCh <- TaskResult{Data: data, Error: err}
		close(resultCh)
	})
	if err != nil {
		resultCh <- TaskResult{Error: err}
		close(resultCh)
	}

	return resultCh
}

// Running reports the number of busy workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free reports the number of idle worker slots.
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() Statistics {
	return p.stats.get()
}

// Shutdown stops accepting work and releases the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.pool.Release()
}
