package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Split    SplitConfig    `mapstructure:"split"`
	Model    ModelConfig    `mapstructure:"model"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Log      LogConfig      `mapstructure:"log"`
}

// ProviderConfig configures the remote inference endpoint. The API key is
// an already-provisioned credential; the engine only carries it.
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay  time.Duration `mapstructure:"retry_max_delay"`
	RetryJitter    float64       `mapstructure:"retry_jitter"`
}

type SplitConfig struct {
	MaxChunkChars int      `mapstructure:"max_chunk_chars"`
	OverlapChars  int      `mapstructure:"overlap_chars"`
	Separators    []string `mapstructure:"separators"`
}

type ModelConfig struct {
	ContextTokenLimit int     `mapstructure:"context_token_limit"`
	CharsPerToken     float64 `mapstructure:"chars_per_token"`
	Encoding          string  `mapstructure:"encoding"`
}

type StrategyConfig struct {
	Kind                 string  `mapstructure:"kind"` // stuff, map_reduce, refine
	MaxConcurrency       int     `mapstructure:"max_concurrency"`
	CombineFactor        int     `mapstructure:"combine_factor"`
	MaxOutputTokens      int     `mapstructure:"max_output_tokens"`
	Temperature          float32 `mapstructure:"temperature"`
	ReservedPromptTokens int     `mapstructure:"reserved_prompt_tokens"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks the invariants the engine depends on.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider api key is required")
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("provider model is required")
	}
	if c.Split.MaxChunkChars <= 0 {
		return fmt.Errorf("split max_chunk_chars must be positive")
	}
	if c.Split.OverlapChars < 0 || c.Split.OverlapChars >= c.Split.MaxChunkChars {
		return fmt.Errorf("split overlap_chars must be in [0, max_chunk_chars)")
	}
	if c.Model.ContextTokenLimit <= 0 {
		return fmt.Errorf("model context_token_limit must be positive")
	}
	if c.Model.CharsPerToken <= 0 {
		return fmt.Errorf("model chars_per_token must be positive")
	}
	switch c.Strategy.Kind {
	case "stuff", "map_reduce", "refine":
	default:
		return fmt.Errorf("strategy kind must be stuff, map_reduce or refine, got %q", c.Strategy.Kind)
	}
	if c.Strategy.Temperature < 0 || c.Strategy.Temperature > 1 {
		return fmt.Errorf("strategy temperature must be in [0, 1]")
	}
	return nil
}
