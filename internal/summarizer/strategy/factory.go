package strategy

import (
	"fmt"

	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// New creates the strategy for the given kind.
func New(kind types.StrategyKind, opts *Options) (Strategy, error) {
	if opts == nil {
		return nil, fmt.Errorf("options are required")
	}

	switch kind {
	case types.StrategyStuff:
		return NewStuff(opts)
	case types.StrategyMapReduce:
		return NewMapReduce(opts)
	case types.StrategyRefine:
		return NewRefine(opts)
	default:
		return nil, fmt.Errorf("unsupported strategy kind: %s", kind)
	}
}
