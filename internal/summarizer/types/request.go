package types

import "time"

// InferenceRequest is a single prompt sent to the remote model. Model
// parameters are passed through opaquely; the engine only reasons about
// MaxOutputTokens for context-budget arithmetic.
type InferenceRequest struct {
	Prompt          string
	MaxOutputTokens int
	Temperature     float32
	StopSequences   []string
}

// Generation is the outcome of one successful inference call. Attempts
// includes the first try, so a call that succeeded immediately reports 1.
type Generation struct {
	Text     string
	Attempts int
	Elapsed  time.Duration
}
