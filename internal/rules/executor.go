package rules

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/petuhovskiy/urn-lights/internal/app"
	"github.com/petuhovskiy/urn-lights/internal/log"
	"github.com/petuhovskiy/urn-lights/internal/rdesc"
)

type Executor struct {
	base *app.App
}

func NewExecutor(base *app.App) *Executor {
	return &Executor{base: base}
}

// ParseList creates rules from a JSON array of descriptors.
func (e *Executor) ParseList(data string) ([]*Rule, error) {
	var descs []rdesc.Rule
	err := json.Unmarshal([]byte(data), &descs)
	if err != nil {
		return nil, err
	}

	var list []*Rule
	for _, desc := range descs {
		rule, err := e.CreateFromDesc(desc)
		if err != nil {
			return nil, err
		}
		list = append(list, rule)
	}
	return list, nil
}

func (e *Executor) CreateFromDesc(desc rdesc.Rule) (*Rule, error) {
	impl, err := loadImpl(e.base, desc)
	if err != nil {
		return nil, err
	}

	return newRule(desc, impl)
}

func (e *Executor) Execute(ctx context.Context, r *Rule) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if r.period != nil {
		return e.executePeriodic(ctx, r, r.period)
	}
	return e.executeOnce(ctx, r)
}

func (e *Executor) executeOnce(ctx context.Context, r *Rule) error {
	ctx = log.Into(ctx, string(r.desc.Act))
	if r.desc.Timeout != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.desc.Timeout.Duration)
		defer cancel()
	}
	return r.impl.Execute(ctx)
}

func (e *Executor) executePeriodic(ctx context.Context, r *Rule, period *Period) error {
	ctx = log.Into(ctx, "periodic")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := e.executeOnce(ctx, r)
		if err != nil {
			log.Error(ctx, "rule execution failed", zap.Error(err))
		}

		period.Sleep(ctx)
	}
}
