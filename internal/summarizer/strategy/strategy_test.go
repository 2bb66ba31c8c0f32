package strategy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// stubClient answers Generate from a programmable function and records
// every prompt it sees.
type stubClient struct {
	mu      sync.Mutex
	prompts []string
	fn      func(call int, req *types.InferenceRequest) (*types.Generation, error)
}

func (c *stubClient) Generate(_ context.Context, req *types.InferenceRequest) (*types.Generation, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, req.Prompt)
	call := len(c.prompts)
	c.mu.Unlock()

	return c.fn(call, req)
}

func (c *stubClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

func (c *stubClient) prompt(i int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompts[i]
}

// fixedSummary makes a stub that always succeeds with the same text.
func fixedSummary(text string) *stubClient {
	return &stubClient{
		fn: func(int, *types.InferenceRequest) (*types.Generation, error) {
			return &types.Generation{Text: text, Attempts: 1, Elapsed: time.Millisecond}, nil
		},
	}
}

// indexedSummary makes a stub that answers map prompts with S<chunk index>
// (recognized by the chunk text inside the prompt) and everything else with
// reduceText.
func indexedSummary(chunks []*types.Chunk, reduceText string) *stubClient {
	return &stubClient{
		fn: func(_ int, req *types.InferenceRequest) (*types.Generation, error) {
			for _, c := range chunks {
				if strings.Contains(req.Prompt, c.Text) {
					return &types.Generation{
						Text:     fmt.Sprintf("S%d", c.Index),
						Attempts: 1,
					}, nil
				}
			}
			return &types.Generation{Text: reduceText, Attempts: 1}, nil
		},
	}
}

func makeChunks(texts ...string) []*types.Chunk {
	chunks := make([]*types.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = &types.Chunk{Index: i, Text: t, EstimatedTokens: len(t) / 4}
	}
	return chunks
}

func testOptions() *Options {
	return &Options{
		Counter: countByFour{},
		Profile: &types.ModelProfile{
			ContextTokenLimit:     4096,
			CharsPerTokenEstimate: 4,
		},
		MaxConcurrency: 2,
		CombineFactor:  5,
	}
}

// countByFour is a deterministic counter for tests: one token per 4 chars,
// rounded up.
type countByFour struct{}

func (countByFour) Count(text string) int {
	return (len(text) + 3) / 4
}
