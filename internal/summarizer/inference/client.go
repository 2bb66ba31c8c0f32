package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// Client is the capability wrapper around one remote summarization call.
// Every Generate is a network round trip; there is no caching at this
// layer. Failures are classified into the types.ErrorKind taxonomy.
type Client interface {
	Generate(ctx context.Context, req *types.InferenceRequest) (*types.Generation, error)
}

// Config configures the OpenAI-compatible client.
type Config struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Validate checks the client configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// WithDefaults fills in the default per-call timeout.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}
