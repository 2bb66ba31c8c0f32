package types

import (
	"fmt"
	"time"
)

// StrategyKind selects the reduction strategy.
type StrategyKind string

const (
	StrategyStuff     StrategyKind = "stuff"
	StrategyMapReduce StrategyKind = "map_reduce"
	StrategyRefine    StrategyKind = "refine"
)

// ParseStrategyKind maps a config string to a StrategyKind.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch StrategyKind(s) {
	case StrategyStuff, StrategyMapReduce, StrategyRefine:
		return StrategyKind(s), nil
	default:
		return "", fmt.Errorf("unsupported strategy kind: %q", s)
	}
}

// StrategyState is the lifecycle of a single strategy run.
type StrategyState string

const (
	StatePending   StrategyState = "pending"
	StateRunning   StrategyState = "running"
	StateCompleted StrategyState = "completed"
	StateFailed    StrategyState = "failed"
)

// PartialResult is one chunk's summary, produced by the map phase or a
// refine step. Partials are reassembled in chunk-index order before any
// reduce call, never in completion order.
type PartialResult struct {
	ChunkIndex int
	Summary    string
	Attempt    int
	Elapsed    time.Duration
}

// StrategyOutput is what a reduction strategy hands back to the orchestrator.
type StrategyOutput struct {
	FinalText  string
	Partials   []PartialResult
	ReducePass int // number of reduce passes issued (map_reduce only)
	TotalCalls int
}

// SummarizationResult is the terminal success value of one orchestrator run.
type SummarizationResult struct {
	FinalText    string
	ChunkCount   int
	Elapsed      time.Duration
	StrategyUsed StrategyKind
	RunID        string
}
