package rules

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/petuhovskiy/urn-lights/internal/app"
	"github.com/petuhovskiy/urn-lights/internal/bgjobs"
	"github.com/petuhovskiy/urn-lights/internal/log"
	"github.com/petuhovskiy/urn-lights/internal/models"
	"github.com/petuhovskiy/urn-lights/internal/recorder"
	"github.com/petuhovskiy/urn-lights/internal/repos"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

// Rule to run random draws against random sets and record every outcome.
type SampleSet struct {
	args       SampleSetArgs
	setFilters []repos.Filter
	setRepo    *repos.ItemSetRepo
	itemRepo   *repos.ItemRepo
	register   *bgjobs.Register
	setLocker  *bgjobs.SetLocker
	saver      recorder.DrawSaver
	random     urn.Source
	exitnode   string
}

type SampleSetArgs struct {
	// Draws per set per execution.
	Draws int
	// Number of random sets to sample in one execution.
	MaxRandomSets int
}

func NewSampleSet(a *app.App, j json.RawMessage) (*SampleSet, error) {
	var args SampleSetArgs
	err := json.Unmarshal(j, &args)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	if args.Draws < 1 {
		args.Draws = 100
	}
	if args.MaxRandomSets < 1 {
		args.MaxRandomSets = 1
	}

	return &SampleSet{
		args:       args,
		setFilters: a.SetFilters,
		setRepo:    a.Repo.ItemSet,
		itemRepo:   a.Repo.Item,
		register:   a.Register,
		setLocker:  a.SetLocker,
		saver:      a.Saver,
		random:     a.Random,
		exitnode:   a.Config.Exitnode,
	}, nil
}

func (r *SampleSet) Execute(ctx context.Context) error {
	sets, err := r.setRepo.FindRandomSets(r.setFilters, r.args.MaxRandomSets)
	if err != nil {
		return fmt.Errorf("failed to find random sets: %w", err)
	}

	for _, set := range sets {
		set := set
		ctx := log.With(ctx, zap.Uint("setID", set.ID))
		r.register.Go(func() {
			err := r.executeForSet(ctx, set)
			if err != nil {
				log.Error(ctx, "sampling failed", zap.Error(err))
			}
		})
	}
	return nil
}

func (r *SampleSet) executeForSet(ctx context.Context, set models.ItemSet) error {
	unlock := r.setLocker.Get(set.ID).SharedLock()
	defer unlock()

	items, err := r.itemRepo.ListBySet(set.ID)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	u := catalogUrn(items)
	if u == nil {
		log.Info(ctx, "set has no items, skipping")
		return nil
	}
	if u.Weight() == 0 {
		log.Info(ctx, "set has zero total weight, skipping")
		return nil
	}

	saver := recorder.WithArgs(r.saver, recorder.SaverArgs{
		Exitnode:  &r.exitnode,
		ItemSetID: &set.ID,
	})

	for i := 0; i < r.args.Draws; i++ {
		if err := r.drawOnce(u, set.Name, saver); err != nil {
			return err
		}
	}

	log.Debug(ctx, "sampled set",
		zap.Int("draws", r.args.Draws),
		zap.Uint32("size", u.Size()),
		zap.Uint32("weight", u.Weight()),
	)
	return nil
}

func (r *SampleSet) drawOnce(u *urn.Urn[string], setName string, saver recorder.DrawSaver) error {
	draw := recorder.StartDraw(models.OpSample, u.Size(), u.Weight())

	// the index is drawn explicitly so it lands in the draw record
	idx := r.random.UniformWeight(u.Weight() - 1)
	draw.Index = &idx
	sampled, _, _ := u.UpdateIndex(keepItem, idx)

	recorder.FinishDraw(draw, sampled, nil)
	observeDraw(setName, draw)
	return recorder.SaveDraw(saver, draw, nil)
}

// keepItem is the identity update; used to read a (weight, value) pair at
// an index.
func keepItem(w urn.Weight, v string) (urn.Weight, string) {
	return w, v
}

func observeDraw(setName string, draw *models.Draw) {
	outcome := "ok"
	if draw.IsFailed {
		outcome = "error"
	}
	app.DrawsTotal.WithLabelValues(setName, string(draw.Op), outcome).Inc()
	if draw.Duration != nil {
		app.DrawDuration.WithLabelValues(setName, string(draw.Op)).Observe(draw.Duration.Seconds())
	}
}
