package tokenizer

import (
	"math"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// Counter estimates the token length of arbitrary text. Implementations
// must be monotonic: Count(a) <= Count(a+b) for any concatenation.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens exactly using a tiktoken encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter creates an exact counter for the named encoding
// (e.g. "cl100k_base").
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{encoding: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// HeuristicCounter estimates tokens from a chars-per-token ratio. Rough,
// but good enough for budget checks when no exact tokenizer is available.
type HeuristicCounter struct {
	charsPerToken float64
}

// NewHeuristicCounter creates a heuristic counter from a model profile.
func NewHeuristicCounter(charsPerToken float64) *HeuristicCounter {
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	return &HeuristicCounter{charsPerToken: charsPerToken}
}

func (c *HeuristicCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / c.charsPerToken))
}

// ForProfile returns an exact counter when the profile names a resolvable
// encoding, otherwise the chars-per-token heuristic.
func ForProfile(profile *types.ModelProfile) Counter {
	if profile.Encoding != "" {
		if c, err := NewTiktokenCounter(profile.Encoding); err == nil {
			return c
		}
	}
	return NewHeuristicCounter(profile.CharsPerTokenEstimate)
}
