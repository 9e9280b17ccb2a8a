package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/petuhovskiy/urn-lights/internal/app"
	"github.com/petuhovskiy/urn-lights/internal/bgjobs"
	"github.com/petuhovskiy/urn-lights/internal/log"
	"github.com/petuhovskiy/urn-lights/internal/models"
	"github.com/petuhovskiy/urn-lights/internal/recorder"
	"github.com/petuhovskiy/urn-lights/internal/repos"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

// Rule to run sample-and-swap traffic: each step replaces a randomly drawn
// element with a fresh one, which never changes the urn size.
type ReplaceSet struct {
	args       ReplaceSetArgs
	setFilters []repos.Filter
	setRepo    *repos.ItemSetRepo
	itemRepo   *repos.ItemRepo
	setLocker  *bgjobs.SetLocker
	saver      recorder.DrawSaver
	random     urn.Source
	exitnode   string
	swapSeq    atomic.Uint64
}

type ReplaceSetArgs struct {
	// Number of swaps per execution.
	Swaps int
	// Weights of replacement items are drawn uniformly from [1, MaxWeight].
	MaxWeight uint32
}

func NewReplaceSet(a *app.App, j json.RawMessage) (*ReplaceSet, error) {
	var args ReplaceSetArgs
	err := json.Unmarshal(j, &args)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	if args.Swaps < 1 {
		args.Swaps = 20
	}
	if args.MaxWeight < 1 {
		args.MaxWeight = 20
	}

	return &ReplaceSet{
		args:       args,
		setFilters: a.SetFilters,
		setRepo:    a.Repo.ItemSet,
		itemRepo:   a.Repo.Item,
		setLocker:  a.SetLocker,
		saver:      a.Saver,
		random:     a.Random,
		exitnode:   a.Config.Exitnode,
	}, nil
}

func (r *ReplaceSet) Execute(ctx context.Context) error {
	sets, err := r.setRepo.FindRandomSets(r.setFilters, 1)
	if err != nil {
		return fmt.Errorf("failed to find random set: %w", err)
	}
	if len(sets) == 0 {
		log.Info(ctx, "no sets found")
		return nil
	}

	set := sets[0]
	ctx = log.With(ctx, zap.Uint("setID", set.ID))

	unlock := r.setLocker.Get(set.ID).TryExclusiveLock()
	if unlock == nil {
		log.Info(ctx, "set is busy, skipping swaps")
		return nil
	}
	defer unlock()

	return r.swapAll(ctx, set)
}

func (r *ReplaceSet) swapAll(ctx context.Context, set models.ItemSet) error {
	items, err := r.itemRepo.ListBySet(set.ID)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	u := catalogUrn(items)
	if u == nil {
		log.Info(ctx, "set has no items, skipping")
		return nil
	}

	saver := recorder.WithArgs(r.saver, recorder.SaverArgs{
		Exitnode:  &r.exitnode,
		ItemSetID: &set.ID,
	})

	size := u.Size()
	for i := 0; i < r.args.Swaps; i++ {
		if u.Weight() == 0 {
			log.Warn(ctx, "set reached zero total weight, stopping swaps")
			break
		}

		draw := recorder.StartDraw(models.OpReplace, u.Size(), u.Weight())
		idx := r.random.UniformWeight(u.Weight() - 1)
		draw.Index = &idx

		w := r.random.UniformWeight(r.args.MaxWeight-1) + 1
		label := fmt.Sprintf("%s/swap-%d", set.Name, r.swapSeq.Add(1))

		var old urn.Item[string]
		old, u = u.ReplaceIndex(w, label, idx)

		recorder.FinishDraw(draw, old, nil)
		observeDraw(set.Name, draw)
		if err := recorder.SaveDraw(saver, draw, nil); err != nil {
			return err
		}

		if u.Size() != size {
			return fmt.Errorf("replace changed urn size: %d -> %d", size, u.Size())
		}
	}

	err = r.itemRepo.ReplaceSet(set.ID, catalogItems(u))
	if err != nil {
		return fmt.Errorf("failed to persist swapped set: %w", err)
	}

	log.Info(ctx, "swapped set",
		zap.Int("swaps", r.args.Swaps),
		zap.Uint32("weight", u.Weight()),
	)
	return nil
}
