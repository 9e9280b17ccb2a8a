package rules

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petuhovskiy/urn-lights/internal/models"
	"github.com/petuhovskiy/urn-lights/internal/rdesc"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

func Test_parsePeriod(t *testing.T) {
	period, err := parsePeriod("random(5,10)")
	assert.NoError(t, err)
	assert.Equal(t, uint(5), period.min)
	assert.Equal(t, uint(10), period.max)

	period, err = parsePeriod("")
	assert.NoError(t, err)
	assert.Nil(t, period)

	_, err = parsePeriod("every 5 seconds")
	assert.Error(t, err)

	_, err = parsePeriod("random(10,5)")
	assert.Error(t, err)
}

func Test_catalogRoundTrip(t *testing.T) {
	items := []models.Item{
		{Position: 0, Label: "a", Weight: 2},
		{Position: 1, Label: "b", Weight: 4},
		{Position: 2, Label: "c", Weight: 3},
	}

	u := catalogUrn(items)
	assert.Equal(t, uint32(3), u.Size())
	assert.Equal(t, uint32(9), u.Weight())

	back := catalogItems(u)
	assert.Len(t, back, 3)
	for i, item := range back {
		assert.Equal(t, items[i].Label, item.Label)
		assert.Equal(t, items[i].Weight, item.Weight)
		assert.Equal(t, uint(i), item.Position)
	}
}

func Test_catalogUrn_empty(t *testing.T) {
	assert.Nil(t, catalogUrn(nil))
}

type discardSaver struct{}

func (discardSaver) Save(*models.Draw) error { return nil }

func churnForTest() *ChurnSet {
	return &ChurnSet{
		args: ChurnSetArgs{
			Steps:     10,
			MaxWeight: 5,
			Ops:       defaultChurnOps,
		},
		random:   urn.NewRandSource(rand.New(rand.NewSource(5))),
		exitnode: "test",
	}
}

func Test_churnStep_insert(t *testing.T) {
	r := churnForTest()
	u := urn.New[string](3, "seed")

	u2, err := r.step(u, models.OpInsert, "s", discardSaver{})
	assert.NoError(t, err)
	assert.Equal(t, uint32(2), u2.Size())
	assert.Greater(t, u2.Weight(), u.Weight())
}

func Test_churnStep_remove(t *testing.T) {
	r := churnForTest()
	u := urn.New[string](3, "seed").Insert(4, "extra")

	u2, err := r.step(u, models.OpRemove, "s", discardSaver{})
	assert.NoError(t, err)
	assert.Equal(t, uint32(1), u2.Size())
}

func Test_churnStep_uninsertLast(t *testing.T) {
	r := churnForTest()
	u := urn.New[string](3, "seed")

	u2, err := r.step(u, models.OpUninsert, "s", discardSaver{})
	assert.NoError(t, err)
	assert.Nil(t, u2)
}

func Test_churnStep_keepsInvariants(t *testing.T) {
	r := churnForTest()
	u := catalogUrn([]models.Item{
		{Label: "a", Weight: 2},
		{Label: "b", Weight: 4},
		{Label: "c", Weight: 3},
	})

	for i := 0; i < 200; i++ {
		op := r.args.Ops.Pick(r.random)
		next, err := r.step(u, op, "s", discardSaver{})
		assert.NoError(t, err)

		if next == nil {
			next = urn.New(r.nextWeight(), r.nextLabel("s"))
		}
		assert.Equal(t, int(next.Size()), len(next.Items()))
		u = next
	}
}

func Test_executor_unknownAct(t *testing.T) {
	e := NewExecutor(nil)

	_, err := e.CreateFromDesc(rdesc.Rule{Act: "no_such_rule"})
	assert.ErrorIs(t, err, ErrUnknownRule)
}
