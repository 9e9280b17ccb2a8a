package recorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/petuhovskiy/urn-lights/internal/models"
)

var (
	_ DrawSaver = (*CopyRecorder)(nil)
	_ Closer    = (*CopyRecorder)(nil)
)

// CopyRecorder buffers draw records and flushes them in batches with COPY.
// Suited for high-volume sampling where one INSERT per draw is too slow.
type CopyRecorder struct {
	mu    sync.Mutex
	conn  *pgx.Conn
	buf   []models.Draw
	limit int
}

func Connect(ctx context.Context, connstr string, flushLimit int) (*CopyRecorder, error) {
	conn, err := pgx.Connect(ctx, connstr)
	if err != nil {
		return nil, fmt.Errorf("connect recorder: %w", err)
	}

	return &CopyRecorder{
		conn:  conn,
		limit: flushLimit,
	}, nil
}

var drawColumns = []string{
	"created_at", "updated_at",
	"item_set_id", "exitnode", "op",
	"urn_size", "urn_weight", "index",
	"is_finished", "label", "weight", "error", "is_failed",
	"started_at", "finished_at", "duration",
}

// drawRow converts a draw into COPY values, in drawColumns order.
func drawRow(d *models.Draw) []any {
	now := time.Now()

	var idx *int64
	if d.Index != nil {
		v := int64(*d.Index)
		idx = &v
	}

	var dur *int64
	if d.Duration != nil {
		ns := d.Duration.Nanoseconds()
		dur = &ns
	}

	return []any{
		now, now,
		d.ItemSetID, d.Exitnode, string(d.Op),
		int64(d.UrnSize), int64(d.UrnWeight), idx,
		d.IsFinished, d.Label, int64(d.Weight), d.Error, d.IsFailed,
		d.StartedAt, d.FinishedAt, dur,
	}
}

func (r *CopyRecorder) Save(draw *models.Draw) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf = append(r.buf, *draw)
	if len(r.buf) < r.limit {
		return nil
	}
	return r.flushLocked(context.Background())
}

// Flush writes all buffered draws immediately.
func (r *CopyRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked(ctx)
}

func (r *CopyRecorder) flushLocked(ctx context.Context) error {
	if len(r.buf) == 0 {
		return nil
	}

	rows := r.buf
	r.buf = nil

	_, err := r.conn.CopyFrom(
		ctx,
		pgx.Identifier{"draws"},
		drawColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return drawRow(&rows[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy draws: %w", err)
	}
	return nil
}

func (r *CopyRecorder) Close(ctx context.Context) error {
	err := r.Flush(ctx)
	if closeErr := r.conn.Close(ctx); err == nil {
		err = closeErr
	}
	return err
}
