package strategy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lk2023060901/doc-summarizer/internal/pkg/logger"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/inference"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/prompt"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/tokenizer"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// Strategy consumes the ordered chunk sequence and drives the inference
// client to produce one final summary. Implementations share the lifecycle
// Pending -> Running -> {Completed | Failed}.
type Strategy interface {
	Kind() types.StrategyKind
	State() types.StrategyState
	Run(ctx context.Context, chunks []*types.Chunk, client inference.Client) (*types.StrategyOutput, error)
}

// Options carries everything a strategy needs besides the chunks and the
// client. The orchestrator owns these and hands them to the factory.
type Options struct {
	Counter tokenizer.Counter
	Profile *types.ModelProfile
	Prompts prompt.Set

	MaxOutputTokens int
	Temperature     float32

	// ReservedPromptTokens is the margin kept for prompt scaffolding when
	// checking a request against the context budget.
	ReservedPromptTokens int

	// MaxConcurrency bounds in-flight calls during a map phase.
	MaxConcurrency int

	// CombineFactor is the number of partial summaries collapsed per call
	// in a map_reduce reduce pass.
	CombineFactor int

	Logger *logger.Logger
}

// Validate checks the options and fills defaults.
func (o *Options) Validate() error {
	if o.Counter == nil {
		return fmt.Errorf("token counter is required")
	}
	if o.Profile == nil {
		return fmt.Errorf("model profile is required")
	}
	if err := o.Profile.Validate(); err != nil {
		return err
	}
	o.Prompts = o.Prompts.WithDefaults()
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = 512
	}
	if o.ReservedPromptTokens <= 0 {
		o.ReservedPromptTokens = 256
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = 4
	}
	if o.CombineFactor < 2 {
		o.CombineFactor = 5
	}
	if o.Logger == nil {
		o.Logger = logger.L()
	}
	return nil
}

// fitsBudget reports whether a prompt of promptTokens fits the model's
// context window after reserving room for scaffolding and the requested
// output tokens.
func (o *Options) fitsBudget(promptTokens int) bool {
	return promptTokens+o.ReservedPromptTokens+o.MaxOutputTokens <= o.Profile.ContextTokenLimit
}

func (o *Options) request(promptText string) *types.InferenceRequest {
	return &types.InferenceRequest{
		Prompt:          promptText,
		MaxOutputTokens: o.MaxOutputTokens,
		Temperature:     o.Temperature,
	}
}

// runState is the shared strategy lifecycle. Transitions are monotonic;
// a strategy instance is good for one Run.
type runState struct {
	mu    sync.Mutex
	state types.StrategyState
}

func (r *runState) State() types.StrategyState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == "" {
		return types.StatePending
	}
	return r.state
}

func (r *runState) transition(to types.StrategyState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = to
}

// finish records the terminal state for a Run outcome.
func (r *runState) finish(err error) {
	if err != nil {
		r.transition(types.StateFailed)
	} else {
		r.transition(types.StateCompleted)
	}
}

// joinChunks concatenates chunk texts with paragraph breaks.
func joinChunks(chunks []*types.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}

// joinSummaries concatenates partial summaries, preserving their order.
func joinSummaries(summaries []string) string {
	return strings.Join(summaries, "\n\n")
}
