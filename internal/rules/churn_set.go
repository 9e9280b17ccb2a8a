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
	"github.com/petuhovskiy/urn-lights/internal/rdesc"
	"github.com/petuhovskiy/urn-lights/internal/recorder"
	"github.com/petuhovskiy/urn-lights/internal/repos"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

var ErrSetLocked = fmt.Errorf("set locked")

// Rule to mutate a random set through the urn: a random mix of inserts,
// removes and uninserts, with the surviving catalog persisted back.
type ChurnSet struct {
	args       ChurnSetArgs
	setFilters []repos.Filter
	setRepo    *repos.ItemSetRepo
	itemRepo   *repos.ItemRepo
	setLocker  *bgjobs.SetLocker
	saver      recorder.DrawSaver
	random     urn.Source
	exitnode   string
	churnSeq   atomic.Uint64
}

type ChurnSetArgs struct {
	// Number of mutation steps per execution.
	Steps int
	// Weights of inserted items are drawn uniformly from [1, MaxWeight].
	MaxWeight uint32
	// Ops is the weighted mix of mutations.
	Ops rdesc.Wrand[models.DrawOp]
}

var defaultChurnOps = rdesc.Wrand[models.DrawOp]{
	{Weight: 2, Item: models.OpInsert},
	{Weight: 1, Item: models.OpRemove},
	{Weight: 1, Item: models.OpUninsert},
}

func NewChurnSet(a *app.App, j json.RawMessage) (*ChurnSet, error) {
	var args ChurnSetArgs
	err := json.Unmarshal(j, &args)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	if args.Steps < 1 {
		args.Steps = 20
	}
	if args.MaxWeight < 1 {
		args.MaxWeight = 20
	}
	if args.Ops == nil {
		args.Ops = defaultChurnOps
	}

	return &ChurnSet{
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

func (r *ChurnSet) Execute(ctx context.Context) error {
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
		log.Info(ctx, "set is busy, skipping churn")
		return nil
	}
	defer unlock()

	return r.churn(ctx, set)
}

func (r *ChurnSet) churn(ctx context.Context, set models.ItemSet) error {
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

	for step := 0; step < r.args.Steps; step++ {
		op := r.args.Ops.Pick(r.random)

		u, err = r.step(u, op, set.Name, saver)
		if err != nil {
			return err
		}

		// churned down to nothing: reseed with a single fresh item
		if u == nil {
			u = urn.New(r.nextWeight(), r.nextLabel(set.Name))
		}
	}

	err = r.itemRepo.ReplaceSet(set.ID, catalogItems(u))
	if err != nil {
		return fmt.Errorf("failed to persist churned set: %w", err)
	}

	log.Info(ctx, "churned set",
		zap.Int("steps", r.args.Steps),
		zap.Uint32("size", u.Size()),
		zap.Uint32("weight", u.Weight()),
	)
	return nil
}

func (r *ChurnSet) step(u *urn.Urn[string], op models.DrawOp, setName string, saver recorder.DrawSaver) (*urn.Urn[string], error) {
	draw := recorder.StartDraw(op, u.Size(), u.Weight())
	next := u

	var item urn.Item[string]
	switch op {
	case models.OpInsert:
		item = urn.Item[string]{Weight: r.nextWeight(), Value: r.nextLabel(setName)}
		next = u.Insert(item.Weight, item.Value)

	case models.OpRemove:
		if u.Weight() == 0 {
			// no index to draw; uninsert instead
			item, _, next = u.Uninsert()
			draw.Op = models.OpUninsert
			break
		}
		idx := r.random.UniformWeight(u.Weight() - 1)
		draw.Index = &idx
		item, next = u.RemoveIndex(idx)

	case models.OpUninsert:
		item, _, next = u.Uninsert()

	default:
		return u, fmt.Errorf("unknown churn op %s", op)
	}

	recorder.FinishDraw(draw, item, nil)
	observeDraw(setName, draw)
	return next, recorder.SaveDraw(saver, draw, nil)
}

func (r *ChurnSet) nextWeight() urn.Weight {
	return r.random.UniformWeight(r.args.MaxWeight-1) + 1
}

func (r *ChurnSet) nextLabel(setName string) string {
	return fmt.Sprintf("%s/churn-%d", setName, r.churnSeq.Add(1))
}
