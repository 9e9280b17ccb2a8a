package rules

import (
	"context"
	"fmt"

	"github.com/petuhovskiy/urn-lights/internal/app"
	"github.com/petuhovskiy/urn-lights/internal/rdesc"
)

var ErrUnknownRule = fmt.Errorf("unknown rule")

// One of the rule implementations.
type RuleImpl interface {
	Execute(ctx context.Context) error
}

func loadImpl(base *app.App, desc rdesc.Rule) (RuleImpl, error) {
	switch desc.Act {
	case rdesc.ActSeedSet:
		return NewSeedSet(base, desc.Args)
	case rdesc.ActSampleSet:
		return NewSampleSet(base, desc.Args)
	case rdesc.ActChurnSet:
		return NewChurnSet(base, desc.Args)
	case rdesc.ActReplaceSet:
		return NewReplaceSet(base, desc.Args)
	default:
		return nil, fmt.Errorf("unknown rule act %s: %w", desc.Act, ErrUnknownRule)
	}
}
