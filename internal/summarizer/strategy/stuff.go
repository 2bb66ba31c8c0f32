package strategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lk2023060901/doc-summarizer/internal/summarizer/inference"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// StuffStrategy concatenates every chunk into a single prompt and issues
// exactly one inference call. It fails fast with ContextOverflow when the
// combined text cannot fit the context budget; the check runs before the
// call, never relying on the remote endpoint's own rejection.
type StuffStrategy struct {
	runState
	opts *Options
}

// NewStuff creates a stuff strategy.
func NewStuff(opts *Options) (*StuffStrategy, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &StuffStrategy{opts: opts}, nil
}

func (s *StuffStrategy) Kind() types.StrategyKind {
	return types.StrategyStuff
}

func (s *StuffStrategy) Run(ctx context.Context, chunks []*types.Chunk, client inference.Client) (out *types.StrategyOutput, err error) {
	defer func() { s.finish(err) }()

	promptText := s.opts.Prompts.Map.Render(map[string]string{
		"text": joinChunks(chunks),
	})

	promptTokens := s.opts.Counter.Count(promptText)
	if !s.opts.fitsBudget(promptTokens) {
		return nil, types.NewSummaryError(types.ErrKindContextOverflow,
			fmt.Sprintf("combined text is %d tokens, context limit is %d",
				promptTokens, s.opts.Profile.ContextTokenLimit), nil)
	}

	s.transition(types.StateRunning)

	if ctx.Err() != nil {
		return nil, types.NewSummaryError(types.ErrKindCancelled, "run cancelled before dispatch", ctx.Err())
	}

	gen, err := client.Generate(ctx, s.opts.request(promptText))
	if err != nil {
		return nil, err
	}

	s.opts.Logger.Debug("stuff call completed",
		zap.Int("prompt_tokens", promptTokens),
		zap.Int("attempts", gen.Attempts),
		zap.Duration("elapsed", gen.Elapsed))

	return &types.StrategyOutput{
		FinalText:  gen.Text,
		TotalCalls: 1,
	}, nil
}
