package urn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// leaves returns the (weight, value) pairs of all leaves in order.
func leaves[T any](t *tree[T]) []Item[T] {
	if t.isLeaf() {
		return []Item[T]{{Weight: t.w, Value: t.value}}
	}
	return append(leaves(t.left), leaves(t.right)...)
}

// sumLeafWeights recomputes the total leaf weight bottom-up.
func sumLeafWeights[T any](t *tree[T]) Weight {
	if t.isLeaf() {
		return t.w
	}
	return sumLeafWeights(t.left) + sumLeafWeights(t.right)
}

func leafDepths[T any](t *tree[T]) (min, max int) {
	if t.isLeaf() {
		return 0, 0
	}
	lmin, lmax := leafDepths(t.left)
	rmin, rmax := leafDepths(t.right)
	min, max = lmin, lmax
	if rmin < min {
		min = rmin
	}
	if rmax > max {
		max = rmax
	}
	return min + 1, max + 1
}

// checkInvariants asserts that every node's weight equals the sum of its
// subtree's leaf weights and that the urn size matches the leaf count.
func checkInvariants[T any](t *testing.T, u *Urn[T]) {
	t.Helper()

	var walk func(tr *tree[T])
	walk = func(tr *tree[T]) {
		if tr.isLeaf() {
			return
		}
		assert.Equal(t, tr.left.w+tr.right.w, tr.w, "node weight != children sum")
		assert.Equal(t, sumLeafWeights(tr), tr.w, "node weight != leaf weight sum")
		walk(tr.left)
		walk(tr.right)
	}
	walk(u.tree)

	assert.Equal(t, int(u.Size()), len(leaves(u.tree)), "size != leaf count")
}

func Test_New(t *testing.T) {
	u := New[string](5, "only")

	assert.Equal(t, uint32(1), u.Size())
	assert.Equal(t, Weight(5), u.Weight())
	assert.Equal(t, "only", u.SampleIndex(0))
	checkInvariants(t, u)
}

func Test_insert_growsBalanced(t *testing.T) {
	u := New[int](1, 0)
	for i := 1; i < 33; i++ {
		u = u.Insert(Weight(i%7+1), i)

		checkInvariants(t, u)
		assert.Equal(t, uint32(i+1), u.Size())

		min, max := leafDepths(u.tree)
		assert.LessOrEqual(t, max-min, 1, "after %d inserts", i)
	}
}

func Test_insert_doesNotMutateOriginal(t *testing.T) {
	u := FromItemsNaive([]Item[string]{
		{Weight: 2, Value: "R"},
		{Weight: 4, Value: "G"},
		{Weight: 3, Value: "B"},
	})

	u2 := u.Insert(6, "A")

	assert.Equal(t, uint32(3), u.Size())
	assert.Equal(t, Weight(9), u.Weight())
	assert.Equal(t, uint32(4), u2.Size())
	assert.Equal(t, Weight(15), u2.Weight())
	checkInvariants(t, u)
	checkInvariants(t, u2)
}

func Test_uninsert_inverseOfInsert(t *testing.T) {
	u := New[int](3, 100)
	for i := 0; i < 20; i++ {
		u = u.Insert(Weight(2*i+1), i)
	}

	u2 := u.Insert(9, 999)
	removed, lb, u3 := u2.Uninsert()

	assert.Equal(t, Item[int]{Weight: 9, Value: 999}, removed)
	assert.LessOrEqual(t, lb, u2.Weight()-9)
	assert.Equal(t, u, u3)
}

func Test_uninsert_lowerBound(t *testing.T) {
	u := FromItemsNaive([]Item[string]{
		{Weight: 2, Value: "R"},
		{Weight: 4, Value: "G"},
		{Weight: 3, Value: "B"},
	})

	removed, lb, rest := u.Uninsert()

	// the most recent insert was B; its bucket must span [lb, lb+3)
	// within the pre-removal weight range
	assert.Equal(t, Item[string]{Weight: 3, Value: "B"}, removed)
	assert.Equal(t, u.SampleIndex(lb), "B")
	if lb > 0 {
		assert.NotEqual(t, u.SampleIndex(lb-1), "B")
	}
	assert.Equal(t, uint32(2), rest.Size())
	assert.Equal(t, Weight(6), rest.Weight())
	checkInvariants(t, rest)
}

func Test_uninsert_lastElement(t *testing.T) {
	u := New[string](4, "last")

	removed, lb, rest := u.Uninsert()
	assert.Equal(t, Item[string]{Weight: 4, Value: "last"}, removed)
	assert.Equal(t, Weight(0), lb)
	assert.Nil(t, rest)
}

func Test_removeIndex(t *testing.T) {
	items := []Item[string]{
		{Weight: 2, Value: "R"},
		{Weight: 4, Value: "G"},
		{Weight: 3, Value: "B"},
	}

	for i := Index(0); i < 9; i++ {
		u := FromItemsNaive(items)
		target := u.SampleIndex(i)

		removed, rest := u.RemoveIndex(i)
		assert.Equal(t, target, removed.Value, "index %d", i)
		assert.Equal(t, uint32(2), rest.Size())
		assert.Equal(t, Weight(9)-removed.Weight, rest.Weight())
		checkInvariants(t, rest)

		// the other two elements survive
		var rem []string
		for _, it := range leaves(rest.tree) {
			rem = append(rem, it.Value)
		}
		assert.NotContains(t, rem, removed.Value)
		assert.Len(t, rem, 2)
	}
}

func Test_removeIndex_lastElement(t *testing.T) {
	u := New[string](1, "only")

	removed, rest := u.RemoveIndex(0)
	assert.Equal(t, Item[string]{Weight: 1, Value: "only"}, removed)
	assert.Nil(t, rest)
}

func Test_replaceIndex_preservesSize(t *testing.T) {
	var items []Item[int]
	for i := 0; i < 10; i++ {
		items = append(items, Item[int]{Weight: Weight(i + 1), Value: i})
	}
	u := FromItems(items)

	old, u2 := u.ReplaceIndex(40, -1, 0)
	assert.Equal(t, Item[int]{Weight: 1, Value: 0}, old)
	assert.Equal(t, u.Size(), u2.Size())
	assert.Equal(t, u.Weight()-old.Weight+40, u2.Weight())
	checkInvariants(t, u2)
}

func Test_updateIndex_adjustsAncestors(t *testing.T) {
	u := FromItems([]Item[string]{
		{Weight: 2, Value: "R"},
		{Weight: 4, Value: "G"},
		{Weight: 3, Value: "B"},
	})

	old, upd, u2 := u.UpdateIndex(func(w Weight, v string) (Weight, string) {
		return w * 2, v
	}, 0)

	assert.Equal(t, old.Value, upd.Value)
	assert.Equal(t, old.Weight*2, upd.Weight)
	assert.Equal(t, u.Weight()+old.Weight, u2.Weight())
	assert.Equal(t, u.Size(), u2.Size())
	checkInvariants(t, u2)
}

func Test_insert_weightSumWraps(t *testing.T) {
	u := New[string](math.MaxUint32-1, "a")
	u = u.Insert(10, "b")

	// 2^32-2 + 10 wraps around to 8.
	assert.Equal(t, Weight(8), u.Weight())
	assert.Equal(t, uint32(2), u.Size())
	checkInvariants(t, u)

	u = u.Insert(math.MaxUint32, "c")
	assert.Equal(t, Weight(7), u.Weight())
	checkInvariants(t, u)

	// Removing "c" unwinds the wrap and its bucket starts right after "a".
	removed, lb, u2 := u.Uninsert()
	assert.Equal(t, Item[string]{Weight: math.MaxUint32, Value: "c"}, removed)
	assert.Equal(t, Weight(math.MaxUint32-1), lb)
	assert.Equal(t, Weight(8), u2.Weight())
	assert.Equal(t, uint32(2), u2.Size())
	checkInvariants(t, u2)
}
