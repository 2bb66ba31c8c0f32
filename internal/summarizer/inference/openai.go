package inference

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lk2023060901/doc-summarizer/internal/pkg/logger"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// OpenAIClient calls an OpenAI-compatible chat completion endpoint. The
// authenticated handle (API key, base URL) is handed in by the caller; the
// client never manages credentials itself.
type OpenAIClient struct {
	client *openai.Client
	config Config
	logger *logger.Logger
}

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(cfg Config, lgr *logger.Logger) (*OpenAIClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	if lgr == nil {
		lgr = logger.L()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
		logger: lgr,
	}, nil
}

// Generate issues one chat completion call with the per-call timeout and
// classifies any failure.
func (c *OpenAIClient) Generate(ctx context.Context, req *types.InferenceRequest) (*types.Generation, error) {
	if req == nil || req.Prompt == "" {
		return nil, types.NewSummaryError(types.ErrKindInvalidInput, "empty prompt", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxOutputTokens,
		Temperature: req.Temperature,
		Stop:        req.StopSequences,
	})
	elapsed := time.Since(start)

	if err != nil {
		classified := classify(err)
		c.logger.Warn("inference call failed",
			zap.String("kind", string(types.KindOf(classified))),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, classified
	}

	if len(resp.Choices) == 0 {
		return nil, types.NewSummaryError(types.ErrKindUnknown, "response contained no choices", nil)
	}

	return &types.Generation{
		Text:     resp.Choices[0].Message.Content,
		Attempts: 1,
		Elapsed:  elapsed,
	}, nil
}

// classify maps transport and API errors onto the engine's error taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode > 0 {
			return classifyStatus(reqErr.HTTPStatusCode, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewSummaryError(types.ErrKindTimeout, "inference call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return types.NewSummaryError(types.ErrKindCancelled, "inference call cancelled", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.NewSummaryError(types.ErrKindTimeout, "inference call timed out", err)
	}

	return types.NewSummaryError(types.ErrKindUnknown, "inference call failed", err)
}

func classifyStatus(status int, err error) error {
	switch {
	case status == 401 || status == 403:
		return types.NewSummaryError(types.ErrKindAccessDenied, "endpoint rejected credentials", err)
	case status == 429:
		return types.NewSummaryError(types.ErrKindThrottled, "rate limit exceeded", err)
	case status == 408 || status == 504:
		return types.NewSummaryError(types.ErrKindTimeout, "inference call timed out", err)
	case status >= 400 && status < 500:
		return types.NewSummaryError(types.ErrKindInvalidInput, "endpoint rejected request", err)
	default:
		return types.NewSummaryError(types.ErrKindUnknown, "endpoint error", err)
	}
}
