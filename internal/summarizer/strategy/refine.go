package strategy

import (
	"context"

	"go.uber.org/zap"

	"github.com/lk2023060901/doc-summarizer/internal/summarizer/inference"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// RefineStrategy folds chunks into a running summary in strict index order.
// The first chunk is summarized alone; every later call combines the running
// summary with the next chunk. Step n+1 depends on step n's output, so there
// is no parallelism here: the slowest strategy, but the one that keeps a
// single coherent narrative. Exactly N calls for N chunks.
type RefineStrategy struct {
	runState
	opts *Options
}

// NewRefine creates a refine strategy.
func NewRefine(opts *Options) (*RefineStrategy, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &RefineStrategy{opts: opts}, nil
}

func (s *RefineStrategy) Kind() types.StrategyKind {
	return types.StrategyRefine
}

func (s *RefineStrategy) Run(ctx context.Context, chunks []*types.Chunk, client inference.Client) (out *types.StrategyOutput, err error) {
	defer func() { s.finish(err) }()
	s.transition(types.StateRunning)

	partials := make([]types.PartialResult, 0, len(chunks))
	var running string

	for _, chunk := range chunks {
		if ctx.Err() != nil {
			return nil, types.NewSummaryError(types.ErrKindCancelled, "refine cancelled", ctx.Err())
		}

		var promptText string
		if chunk.Index == 0 {
			promptText = s.opts.Prompts.RefineInitial.Render(map[string]string{
				"text": chunk.Text,
			})
		} else {
			promptText = s.opts.Prompts.RefineFold.Render(map[string]string{
				"summary": running,
				"text":    chunk.Text,
			})
		}

		gen, genErr := client.Generate(ctx, s.opts.request(promptText))
		if genErr != nil {
			return nil, attribute(genErr, chunk.Index)
		}

		running = gen.Text
		partials = append(partials, types.PartialResult{
			ChunkIndex: chunk.Index,
			Summary:    gen.Text,
			Attempt:    gen.Attempts,
			Elapsed:    gen.Elapsed,
		})

		s.opts.Logger.Debug("refine step completed",
			zap.Int("chunk", chunk.Index),
			zap.Int("attempts", gen.Attempts),
			zap.Duration("elapsed", gen.Elapsed))
	}

	return &types.StrategyOutput{
		FinalText:  running,
		Partials:   partials,
		TotalCalls: len(chunks),
	}, nil
}
