package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lk2023060901/doc-summarizer/internal/pkg/logger"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/inference"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/prompt"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/splitter"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/strategy"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/tokenizer"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// Config wires a summarization run: how to split, what model budget to
// honor, and which reduction strategy to apply.
type Config struct {
	Split    types.SplitConfig
	Profile  types.ModelProfile
	Strategy types.StrategyKind
	Prompts  prompt.Set

	MaxOutputTokens      int
	Temperature          float32
	ReservedPromptTokens int
	MaxConcurrency       int
	CombineFactor        int
}

// Validate checks the run configuration.
func (c *Config) Validate() error {
	if err := c.Split.Validate(); err != nil {
		return fmt.Errorf("split config: %w", err)
	}
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("model profile: %w", err)
	}
	if _, err := types.ParseStrategyKind(string(c.Strategy)); err != nil {
		return err
	}
	return nil
}

// Orchestrator is the top-level coordinator: it validates input, splits the
// document, selects the reduction strategy and aggregates timing and error
// state. Chunks and partial results live only within one Summarize call.
type Orchestrator struct {
	cfg      *Config
	splitter *splitter.RecursiveSplitter
	counter  tokenizer.Counter
	client   inference.Client
	logger   *logger.Logger
}

// New creates an orchestrator around an already-authenticated client.
func New(cfg *Config, client inference.Client, lgr *logger.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("inference client is required")
	}
	if lgr == nil {
		lgr = logger.L()
	}

	counter := tokenizer.ForProfile(&cfg.Profile)
	split, err := splitter.New(cfg.Split, counter)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		cfg:      cfg,
		splitter: split,
		counter:  counter,
		client:   client,
		logger:   lgr,
	}, nil
}

// Summarize produces one coherent summary of text, or a classified error.
func (o *Orchestrator) Summarize(ctx context.Context, text string) (*types.SummarizationResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID))

	if strings.TrimSpace(text) == "" {
		return nil, types.NewSummaryError(types.ErrKindInvalidInput, "input text is empty", nil)
	}

	chunks := o.splitter.Split(text)
	log.Info("document split",
		zap.Int("chunks", len(chunks)),
		zap.Int("input_chars", len(text)),
		zap.String("strategy", string(o.cfg.Strategy)))

	kind := o.cfg.Strategy
	// A single chunk that fits the budget needs no reduction machinery:
	// one stuff call answers it regardless of the requested strategy.
	if len(chunks) == 1 && o.fitsBudget(chunks[0].EstimatedTokens) {
		kind = types.StrategyStuff
	}

	strat, err := strategy.New(kind, o.strategyOptions(log))
	if err != nil {
		return nil, types.NewSummaryError(types.ErrKindInvalidInput, "bad strategy configuration", err)
	}

	out, err := strat.Run(ctx, chunks, o.client)
	if err != nil {
		return nil, o.surface(log, err)
	}

	result := &types.SummarizationResult{
		FinalText:    out.FinalText,
		ChunkCount:   len(chunks),
		Elapsed:      time.Since(start),
		StrategyUsed: strat.Kind(),
		RunID:        runID,
	}

	log.Info("summarization completed",
		zap.String("strategy", string(result.StrategyUsed)),
		zap.Int("chunks", result.ChunkCount),
		zap.Int("calls", out.TotalCalls),
		zap.Int("reduce_passes", out.ReducePass),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}

func (o *Orchestrator) strategyOptions(log *logger.Logger) *strategy.Options {
	return &strategy.Options{
		Counter:              o.counter,
		Profile:              &o.cfg.Profile,
		Prompts:              o.cfg.Prompts,
		MaxOutputTokens:      o.cfg.MaxOutputTokens,
		Temperature:          o.cfg.Temperature,
		ReservedPromptTokens: o.cfg.ReservedPromptTokens,
		MaxConcurrency:       o.cfg.MaxConcurrency,
		CombineFactor:        o.cfg.CombineFactor,
		Logger:               log,
	}
}

// fitsBudget mirrors the strategies' pre-flight check for the single-chunk
// shortcut. Approximate on purpose: the strategy re-checks exactly.
func (o *Orchestrator) fitsBudget(promptTokens int) bool {
	reserved := o.cfg.ReservedPromptTokens
	if reserved <= 0 {
		reserved = 256
	}
	maxOut := o.cfg.MaxOutputTokens
	if maxOut <= 0 {
		maxOut = 512
	}
	return promptTokens+reserved+maxOut <= o.cfg.Profile.ContextTokenLimit
}

// surface logs a strategy failure and returns it unchanged. The retry layer
// below has already exhausted transient faults, so whatever arrives here is
// terminal for this run.
func (o *Orchestrator) surface(log *logger.Logger, err error) error {
	kind := types.KindOf(err)
	switch kind {
	case types.ErrKindAccessDenied:
		log.Error("summarization aborted: the inference endpoint denied access; "+
			"check credentials and model permissions", zap.Error(err))
	case types.ErrKindCancelled:
		log.Warn("summarization cancelled", zap.Error(err))
	default:
		log.Error("summarization failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
	return err
}
