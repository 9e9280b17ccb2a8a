package recorder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petuhovskiy/urn-lights/internal/models"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

type memorySaver struct {
	draws []*models.Draw
	err   error
}

func (s *memorySaver) Save(d *models.Draw) error {
	s.draws = append(s.draws, d)
	return s.err
}

func Test_FinishDraw(t *testing.T) {
	draw := StartDraw(models.OpSample, 3, 9)
	assert.NotNil(t, draw.StartedAt)
	assert.False(t, draw.IsFinished)

	FinishDraw(draw, urn.Item[string]{Weight: 4, Value: "G"}, nil)

	assert.True(t, draw.IsFinished)
	assert.False(t, draw.IsFailed)
	assert.Equal(t, "G", draw.Label)
	assert.Equal(t, uint32(4), draw.Weight)
	assert.NotNil(t, draw.FinishedAt)
	assert.NotNil(t, draw.Duration)
}

func Test_FinishDraw_error(t *testing.T) {
	draw := StartDraw(models.OpRemove, 1, 2)
	FinishDraw(draw, urn.Item[string]{}, fmt.Errorf("boom"))

	assert.True(t, draw.IsFailed)
	assert.Equal(t, "boom", draw.Error)
	assert.True(t, draw.IsFinished)
}

func Test_WithArgs(t *testing.T) {
	mem := &memorySaver{}
	exitnode := "node-1"
	setID := uint(7)
	saver := WithArgs(mem, SaverArgs{Exitnode: &exitnode, ItemSetID: &setID})

	draw := StartDraw(models.OpSample, 2, 5)
	err := SaveDraw(saver, draw, nil)

	assert.NoError(t, err)
	assert.Len(t, mem.draws, 1)
	assert.Equal(t, "node-1", mem.draws[0].Exitnode)
	assert.Equal(t, setID, *mem.draws[0].ItemSetID)
}

func Test_SaveDraw_combinesErrors(t *testing.T) {
	mem := &memorySaver{err: fmt.Errorf("db down")}
	draw := StartDraw(models.OpSample, 2, 5)

	err := SaveDraw(mem, draw, fmt.Errorf("op failed"))
	assert.ErrorContains(t, err, "op failed")
	assert.ErrorContains(t, err, "db down")
}

func Test_drawRow(t *testing.T) {
	draw := StartDraw(models.OpSample, 3, 9)
	idx := uint32(5)
	draw.Index = &idx
	FinishDraw(draw, urn.Item[string]{Weight: 4, Value: "G"}, nil)

	row := drawRow(draw)
	assert.Len(t, row, len(drawColumns))

	// index column keeps its value, nil stays NULL
	assert.Equal(t, int64(5), *row[7].(*int64))

	draw.Index = nil
	row = drawRow(draw)
	assert.Nil(t, row[7].(*int64))
}
