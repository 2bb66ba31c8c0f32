package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

func TestHeuristicCounter_CeilDivision(t *testing.T) {
	c := NewHeuristicCounter(4)

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
		{strings.Repeat("x", 401), 101},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Count(tt.text), "text length %d", len(tt.text))
	}
}

func TestHeuristicCounter_DefaultsRatio(t *testing.T) {
	for _, ratio := range []float64{0, -3} {
		c := NewHeuristicCounter(ratio)
		assert.Equal(t, 1, c.Count("abcd"))
		assert.Equal(t, 2, c.Count("abcdefgh"))
	}
}

func TestHeuristicCounter_Monotonic(t *testing.T) {
	c := NewHeuristicCounter(3.5)
	prev := 0
	text := ""
	for i := 0; i < 50; i++ {
		text += "word "
		n := c.Count(text)
		assert.GreaterOrEqual(t, n, prev)
		prev = n
	}
}

func TestForProfile_FallsBackOnUnknownEncoding(t *testing.T) {
	profile := &types.ModelProfile{
		ContextTokenLimit:     8192,
		CharsPerTokenEstimate: 4,
		Encoding:              "no-such-encoding",
	}

	c := ForProfile(profile)
	_, isHeuristic := c.(*HeuristicCounter)
	assert.True(t, isHeuristic)
	assert.Equal(t, 1, c.Count("abcd"))
}

func TestForProfile_EmptyEncodingUsesHeuristic(t *testing.T) {
	profile := &types.ModelProfile{ContextTokenLimit: 8192, CharsPerTokenEstimate: 2}

	c := ForProfile(profile)
	_, isHeuristic := c.(*HeuristicCounter)
	assert.True(t, isHeuristic)
	assert.Equal(t, 2, c.Count("abcd"))
}
