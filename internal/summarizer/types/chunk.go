package types

import "fmt"

// Chunk is a bounded, ordered slice of the source document. Chunks are
// immutable once produced by the splitter and are consumed read-only by
// the reduction strategies.
type Chunk struct {
	Index           int    // 0-based, contiguous, order significant
	Text            string
	EstimatedTokens int
}

// DefaultSeparators are tried most-specific first: paragraph break,
// line break, sentence end, word boundary, then rune-level slicing.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// SplitConfig controls how the recursive splitter bounds and overlaps chunks.
type SplitConfig struct {
	MaxChunkChars int      `mapstructure:"max_chunk_chars"`
	OverlapChars  int      `mapstructure:"overlap_chars"`
	Separators    []string `mapstructure:"separators"`
}

// Validate checks the splitter invariants. Overlap must stay strictly below
// the chunk bound, otherwise merging could loop forever.
func (c *SplitConfig) Validate() error {
	if c.MaxChunkChars <= 0 {
		return fmt.Errorf("max chunk chars must be positive, got %d", c.MaxChunkChars)
	}
	if c.OverlapChars < 0 {
		return fmt.Errorf("overlap chars cannot be negative, got %d", c.OverlapChars)
	}
	if c.OverlapChars >= c.MaxChunkChars {
		return fmt.Errorf("overlap chars (%d) must be less than max chunk chars (%d)",
			c.OverlapChars, c.MaxChunkChars)
	}
	return nil
}

// WithDefaults returns a copy with the default separator ladder filled in.
func (c SplitConfig) WithDefaults() SplitConfig {
	if len(c.Separators) == 0 {
		c.Separators = DefaultSeparators
	}
	return c
}

// ModelProfile describes the context budget of the target model. When
// Encoding names a known tiktoken encoding the token counter is exact;
// otherwise counting falls back to the chars-per-token heuristic.
type ModelProfile struct {
	ContextTokenLimit     int     `mapstructure:"context_token_limit"`
	CharsPerTokenEstimate float64 `mapstructure:"chars_per_token"`
	Encoding              string  `mapstructure:"encoding"`
}

// Validate checks the profile invariants.
func (p *ModelProfile) Validate() error {
	if p.ContextTokenLimit <= 0 {
		return fmt.Errorf("context token limit must be positive, got %d", p.ContextTokenLimit)
	}
	if p.CharsPerTokenEstimate <= 0 {
		return fmt.Errorf("chars per token estimate must be positive, got %f", p.CharsPerTokenEstimate)
	}
	return nil
}
