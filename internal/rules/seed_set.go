package rules

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/petuhovskiy/urn-lights/internal/app"
	"github.com/petuhovskiy/urn-lights/internal/log"
	"github.com/petuhovskiy/urn-lights/internal/models"
	"github.com/petuhovskiy/urn-lights/internal/repos"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

// Rule to keep a minimum number of weighted sets owned by this node.
type SeedSet struct {
	args     SeedSetArgs
	setRepo  *repos.ItemSetRepo
	itemRepo *repos.ItemRepo
	sequence *repos.Sequence
	random   urn.Source
	exitnode string
}

type SeedSetArgs struct {
	// Keep at least this many sets.
	MinSets int64
	// Number of items in a newly seeded set.
	Items int
	// Weights of seeded items are drawn uniformly from [1, MaxWeight].
	MaxWeight uint32
}

func NewSeedSet(a *app.App, j json.RawMessage) (*SeedSet, error) {
	var args SeedSetArgs
	err := json.Unmarshal(j, &args)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	if args.MinSets < 1 {
		args.MinSets = 1
	}
	if args.Items < 1 {
		args.Items = 16
	}
	if args.MaxWeight < 1 {
		args.MaxWeight = 20
	}

	return &SeedSet{
		args:     args,
		setRepo:  a.Repo.ItemSet,
		itemRepo: a.Repo.Item,
		sequence: a.Repo.SeqExitnodeSet,
		random:   a.Random,
		exitnode: a.Config.Exitnode,
	}, nil
}

func (r *SeedSet) Execute(ctx context.Context) error {
	count, err := r.setRepo.CountByExitnode(r.exitnode)
	if err != nil {
		return fmt.Errorf("failed to count sets: %w", err)
	}

	for ; count < r.args.MinSets; count++ {
		err := r.createSet(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SeedSet) createSet(ctx context.Context) error {
	seqID, err := r.sequence.Next()
	if err != nil {
		return err
	}

	set := &models.ItemSet{
		Name:     fmt.Sprintf("bench@%s-%d", r.exitnode, seqID),
		Exitnode: r.exitnode,
	}
	if err := r.setRepo.Create(set); err != nil {
		return fmt.Errorf("failed to create set: %w", err)
	}

	items := make([]models.Item, 0, r.args.Items)
	for i := 0; i < r.args.Items; i++ {
		items = append(items, models.Item{
			ItemSetID: set.ID,
			Position:  uint(i),
			Label:     fmt.Sprintf("%s/item-%d", set.Name, i),
			Weight:    r.random.UniformWeight(r.args.MaxWeight-1) + 1,
		})
	}
	if err := r.itemRepo.Create(items); err != nil {
		return fmt.Errorf("failed to create items: %w", err)
	}

	log.Info(ctx, "seeded set",
		zap.String("set", set.Name),
		zap.Int("items", len(items)),
	)
	return nil
}
