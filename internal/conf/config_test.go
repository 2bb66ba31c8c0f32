package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Provider: ProviderConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
		Split:    SplitConfig{MaxChunkChars: 4000, OverlapChars: 100},
		Model:    ModelConfig{ContextTokenLimit: 8192, CharsPerToken: 4},
		Strategy: StrategyConfig{Kind: "map_reduce", Temperature: 0.3},
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  base_url: "https://api.example.com/v1"
  api_key: "sk-test"
  model: "gpt-4o-mini"
  timeout: 30s
  max_retries: 3

split:
  max_chunk_chars: 4000
  overlap_chars: 100
  separators: ["\n\n", "\n"]

model:
  context_token_limit: 8192
  chars_per_token: 4
  encoding: "cl100k_base"

strategy:
  kind: "map_reduce"
  max_concurrency: 4
  combine_factor: 5
  max_output_tokens: 512
  temperature: 0.3

log:
  level: "info"
  format: "json"
  output: "console"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Provider.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Provider.Model)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 3, cfg.Provider.MaxRetries)
	assert.Equal(t, 4000, cfg.Split.MaxChunkChars)
	assert.Equal(t, []string{"\n\n", "\n"}, cfg.Split.Separators)
	assert.Equal(t, 8192, cfg.Model.ContextTokenLimit)
	assert.Equal(t, "cl100k_base", cfg.Model.Encoding)
	assert.Equal(t, "map_reduce", cfg.Strategy.Kind)
	assert.Equal(t, float32(0.3), cfg.Strategy.Temperature)
	assert.Equal(t, "info", cfg.Log.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.Provider.APIKey = "" }},
		{"missing model", func(c *Config) { c.Provider.Model = "" }},
		{"zero chunk size", func(c *Config) { c.Split.MaxChunkChars = 0 }},
		{"negative overlap", func(c *Config) { c.Split.OverlapChars = -1 }},
		{"overlap not below max", func(c *Config) { c.Split.OverlapChars = 4000 }},
		{"zero token limit", func(c *Config) { c.Model.ContextTokenLimit = 0 }},
		{"zero chars per token", func(c *Config) { c.Model.CharsPerToken = 0 }},
		{"bad strategy kind", func(c *Config) { c.Strategy.Kind = "recursive" }},
		{"temperature too high", func(c *Config) { c.Strategy.Temperature = 1.5 }},
		{"temperature negative", func(c *Config) { c.Strategy.Temperature = -0.1 }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
