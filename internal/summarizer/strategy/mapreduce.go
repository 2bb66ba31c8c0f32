package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lk2023060901/doc-summarizer/internal/pkg/workerpool"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/inference"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// MapReduceStrategy summarizes every chunk independently (map phase, bounded
// concurrency), then combines partial summaries in chunk order. When the
// combined summaries still exceed the context budget, groups of up to
// CombineFactor partials are collapsed in further map passes until one final
// reduce call fits. A pass that fails to shrink the total token count aborts
// with ReductionDivergence instead of looping.
type MapReduceStrategy struct {
	runState
	opts *Options
}

// NewMapReduce creates a map_reduce strategy.
func NewMapReduce(opts *Options) (*MapReduceStrategy, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &MapReduceStrategy{opts: opts}, nil
}

func (s *MapReduceStrategy) Kind() types.StrategyKind {
	return types.StrategyMapReduce
}

func (s *MapReduceStrategy) Run(ctx context.Context, chunks []*types.Chunk, client inference.Client) (out *types.StrategyOutput, err error) {
	defer func() { s.finish(err) }()
	s.transition(types.StateRunning)

	pool, err := workerpool.New(&workerpool.Config{MaxWorkers: s.opts.MaxConcurrency}, s.opts.Logger.Logger)
	if err != nil {
		return nil, err
	}
	defer pool.Shutdown()

	prompts := make([]string, len(chunks))
	for i, c := range chunks {
		prompts[i] = s.opts.Prompts.Map.Render(map[string]string{"text": c.Text})
	}

	partials, err := s.mapPass(ctx, pool, prompts, client)
	if err != nil {
		return nil, err
	}

	s.opts.Logger.Debug("map phase completed",
		zap.Int("chunks", len(chunks)),
		zap.Int("max_concurrency", s.opts.MaxConcurrency))

	summaries := make([]string, len(partials))
	for i, p := range partials {
		summaries[i] = p.Summary
	}

	totalCalls := len(partials)
	passes := 0
	prevTokens := s.opts.Counter.Count(joinSummaries(summaries))
	var final string

	for {
		if ctx.Err() != nil {
			return nil, types.NewSummaryError(types.ErrKindCancelled, "reduce phase cancelled", ctx.Err())
		}

		combinedPrompt := s.opts.Prompts.Combine.Render(map[string]string{
			"summaries": joinSummaries(summaries),
		})

		if len(summaries) <= s.opts.CombineFactor && s.opts.fitsBudget(s.opts.Counter.Count(combinedPrompt)) {
			gen, genErr := client.Generate(ctx, s.opts.request(combinedPrompt))
			if genErr != nil {
				return nil, genErr
			}
			passes++
			totalCalls++
			final = gen.Text
			break
		}

		collapsed, passErr := s.collapse(ctx, pool, summaries, client)
		if passErr != nil {
			return nil, passErr
		}
		passes++
		totalCalls += len(collapsed)

		nextTokens := s.opts.Counter.Count(joinSummaries(collapsed))
		if nextTokens >= prevTokens {
			return nil, types.NewSummaryError(types.ErrKindReductionDivergence,
				fmt.Sprintf("reduce pass %d did not shrink summaries (%d -> %d tokens)",
					passes, prevTokens, nextTokens), nil)
		}

		s.opts.Logger.Debug("collapse pass completed",
			zap.Int("pass", passes),
			zap.Int("summaries", len(collapsed)),
			zap.Int("tokens_before", prevTokens),
			zap.Int("tokens_after", nextTokens))

		prevTokens = nextTokens
		summaries = collapsed
	}

	return &types.StrategyOutput{
		FinalText:  final,
		Partials:   partials,
		ReducePass: passes,
		TotalCalls: totalCalls,
	}, nil
}

// collapse groups summaries into batches of up to CombineFactor, in order,
// and maps each batch to one shorter summary.
func (s *MapReduceStrategy) collapse(ctx context.Context, pool *workerpool.Pool, summaries []string, client inference.Client) ([]string, error) {
	k := s.opts.CombineFactor
	prompts := make([]string, 0, (len(summaries)+k-1)/k)
	for start := 0; start < len(summaries); start += k {
		end := start + k
		if end > len(summaries) {
			end = len(summaries)
		}
		prompts = append(prompts, s.opts.Prompts.Combine.Render(map[string]string{
			"summaries": joinSummaries(summaries[start:end]),
		}))
	}

	partials, err := s.mapPass(ctx, pool, prompts, client)
	if err != nil {
		return nil, err
	}

	collapsed := make([]string, len(partials))
	for i, p := range partials {
		collapsed[i] = p.Summary
	}
	return collapsed, nil
}

// mapPass dispatches one inference call per prompt over the bounded pool
// and reassembles results by index, never by completion order. On the first
// failure no further prompts are dispatched; in-flight calls drain before
// the error is returned.
func (s *MapReduceStrategy) mapPass(ctx context.Context, pool *workerpool.Pool, prompts []string, client inference.Client) ([]types.PartialResult, error) {
	results := make([]types.PartialResult, len(prompts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for i, p := range prompts {
		if ctx.Err() != nil || failed() {
			break
		}

		index, promptText := i, p
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			gen, err := client.Generate(ctx, s.opts.request(promptText))
			if err != nil {
				setErr(attribute(err, index))
				return
			}
			results[index] = types.PartialResult{
				ChunkIndex: index,
				Summary:    gen.Text,
				Attempt:    gen.Attempts,
				Elapsed:    gen.Elapsed,
			}
		}); err != nil {
			wg.Done()
			setErr(err)
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if ctx.Err() != nil {
		return nil, types.NewSummaryError(types.ErrKindCancelled, "map phase cancelled", ctx.Err())
	}
	return results, nil
}

// attribute ties an unattributed error to the chunk whose call produced it.
func attribute(err error, index int) error {
	var se *types.SummaryError
	if errors.As(err, &se) && se.ChunkIndex < 0 {
		se.ChunkIndex = index
		return se
	}
	return err
}
