package recorder

import (
	"context"
	"errors"
	"time"

	"github.com/petuhovskiy/urn-lights/internal/models"
	"github.com/petuhovskiy/urn-lights/internal/repos"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

// DrawSaver persists draw records.
type DrawSaver interface {
	Save(draw *models.Draw) error
}

// Closer is implemented by savers that buffer writes and must be flushed
// before the process exits.
type Closer interface {
	Close(ctx context.Context) error
}

// SaverArgs hydrates draws with fields the operation site doesn't know.
type SaverArgs struct {
	Exitnode  *string
	ItemSetID *uint
}

func (a *SaverArgs) Apply(d *models.Draw) {
	if d.ItemSetID == nil {
		d.ItemSetID = a.ItemSetID
	}
	if d.Exitnode == "" && a.Exitnode != nil {
		d.Exitnode = *a.Exitnode
	}
}

// WithArgs wraps a saver so that every record is hydrated before writing.
func WithArgs(s DrawSaver, args SaverArgs) DrawSaver {
	return &argsSaver{inner: s, args: args}
}

type argsSaver struct {
	inner DrawSaver
	args  SaverArgs
}

func (s *argsSaver) Save(d *models.Draw) error {
	s.args.Apply(d)
	return s.inner.Save(d)
}

// RepoSaver writes draws through the gorm repo, one row per draw.
type RepoSaver struct {
	repo *repos.DrawRepo
}

func NewRepoSaver(repo *repos.DrawRepo) *RepoSaver {
	return &RepoSaver{repo: repo}
}

func (s *RepoSaver) Save(d *models.Draw) error {
	return s.repo.Save(d)
}

// StartDraw returns a draw record with the clock started.
func StartDraw(op models.DrawOp, size uint32, weight urn.Weight) *models.Draw {
	now := time.Now()
	return &models.Draw{
		Op:        op,
		UrnSize:   size,
		UrnWeight: weight,
		DrawResult: models.DrawResult{
			StartedAt: &now,
		},
	}
}

// FinishDraw fills the result fields of a draw.
func FinishDraw(draw *models.Draw, item urn.Item[string], err error) {
	draw.Label = item.Value
	draw.Weight = item.Weight

	if err != nil && !draw.IsFailed {
		draw.IsFailed = true
		draw.Error = err.Error()
	}

	draw.IsFinished = true
	if draw.FinishedAt == nil && draw.StartedAt != nil {
		now := time.Now()
		draw.FinishedAt = &now
	}

	if draw.Duration == nil && draw.StartedAt != nil && draw.FinishedAt != nil {
		duration := draw.FinishedAt.Sub(*draw.StartedAt)
		draw.Duration = &duration
	}
}

// SaveDraw saves the draw and returns the combined error from the saver and
// the operation itself.
func SaveDraw(saver DrawSaver, draw *models.Draw, opErr error) (retErr error) {
	retErr = opErr
	if err := saver.Save(draw); err != nil {
		if retErr == nil {
			retErr = err
		} else {
			retErr = errors.Join(retErr, err)
		}
	}

	return retErr
}
