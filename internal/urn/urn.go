package urn

// Item is one weighted element of an urn.
type Item[T any] struct {
	Weight Weight
	Value  T
}

// Urn is a weighted multiset supporting logarithmic weighted sampling,
// insertion and removal. The tree stays almost perfect: leaf depths differ
// by at most one level no matter how the urn grows or shrinks.
//
// Urns behave like immutable values. Every mutating operation returns a new
// urn and shares untouched subtrees with the old one; nothing is modified in
// place. There is no empty urn: constructors return nil for empty input and
// removal operations return a nil successor when the last element leaves.
type Urn[T any] struct {
	size uint32
	tree *tree[T]
}

// New returns an urn holding a single element.
func New[T any](w Weight, value T) *Urn[T] {
	return &Urn[T]{size: 1, tree: leaf(w, value)}
}

// FromItems builds an urn from items in linear time, or nil if items is
// empty. The result is observably equivalent to FromItemsNaive on size and
// total weight; the tree shape may differ.
func FromItems[T any](items []Item[T]) *Urn[T] {
	if len(items) == 0 {
		return nil
	}
	return &Urn[T]{size: uint32(len(items)), tree: almostPerfect(items)}
}

// FromItemsNaive folds Insert over items, or returns nil if items is empty.
// O(n log n); kept as a correctness oracle for FromItems.
func FromItemsNaive[T any](items []Item[T]) *Urn[T] {
	if len(items) == 0 {
		return nil
	}
	u := New(items[0].Weight, items[0].Value)
	for _, it := range items[1:] {
		u = u.Insert(it.Weight, it.Value)
	}
	return u
}

// Items returns the (weight, value) pairs of all elements in leaf order.
// O(n); intended for persisting or inspecting the urn contents.
func (u *Urn[T]) Items() []Item[T] {
	items := make([]Item[T], 0, u.size)
	var walk func(t *tree[T])
	walk = func(t *tree[T]) {
		if t.isLeaf() {
			items = append(items, Item[T]{Weight: t.w, Value: t.value})
			return
		}
		walk(t.left)
		walk(t.right)
	}
	walk(u.tree)
	return items
}

// Size returns the number of elements in the urn.
func (u *Urn[T]) Size() uint32 {
	return u.size
}

// Weight returns the total weight of all elements.
func (u *Urn[T]) Weight() Weight {
	return u.tree.w
}

// SampleIndex returns the element whose bucket contains index i.
// Requires i < u.Weight(); an out-of-range index panics.
func (u *Urn[T]) SampleIndex(i Index) T {
	checkIndex(i, u.Weight())
	return u.tree.sampleIndex(i)
}

// UpdateIndex applies f to the element at index i, returning the old pair,
// the new pair and the updated urn. Requires i < u.Weight().
func (u *Urn[T]) UpdateIndex(f func(Weight, T) (Weight, T), i Index) (Item[T], Item[T], *Urn[T]) {
	checkIndex(i, u.Weight())
	old, upd, t := u.tree.updateIndex(f, i)
	return old, upd, &Urn[T]{size: u.size, tree: t}
}

// ReplaceIndex swaps the element at index i for (w, value) and returns the
// displaced pair. Size never changes. Requires i < u.Weight().
func (u *Urn[T]) ReplaceIndex(w Weight, value T, i Index) (Item[T], *Urn[T]) {
	checkIndex(i, u.Weight())
	old, t := u.tree.replaceIndex(w, value, i)
	return old, &Urn[T]{size: u.size, tree: t}
}

// Insert adds (w, value) to the urn.
//
// The insertion path is the pre-insertion size read bit by bit from the
// lowest bit up: 0 descends left, 1 descends right. Successive insertions
// therefore alternate which side of each node grows, keeping sibling
// subtrees within one level of each other. The reached leaf is replaced by
// a node pairing it with a new leaf for (w, value).
func (u *Urn[T]) Insert(w Weight, value T) *Urn[T] {
	return &Urn[T]{size: u.size + 1, tree: insertPath(u.tree, u.size, w, value)}
}

func insertPath[T any](t *tree[T], path uint32, w Weight, value T) *tree[T] {
	if t.isLeaf() {
		return node(t.w+w, t, leaf(w, value))
	}
	if path&1 == 1 {
		return node(t.w+w, t.left, insertPath(t.right, path>>1, w, value))
	}
	return node(t.w+w, insertPath(t.left, path>>1, w, value), t.right)
}

// Uninsert removes the element the most recent Insert added, following the
// same path Insert derived from the size before that insertion. It returns
// the removed pair, the lower bound of the bucket it occupied (the summed
// weight of all leaves to its left) and the remaining urn, or nil when the
// urn had size 1.
func (u *Urn[T]) Uninsert() (Item[T], Weight, *Urn[T]) {
	removed, lb, t := uninsertPath(u.tree, u.size-1)
	if t == nil {
		return removed, lb, nil
	}
	return removed, lb, &Urn[T]{size: u.size - 1, tree: t}
}

// uninsertPath removes the leaf at the end of path. A node whose child
// vanishes collapses into its other child; all other path nodes are rebuilt
// with the removed weight subtracted.
func uninsertPath[T any](t *tree[T], path uint32) (Item[T], Weight, *tree[T]) {
	if t.isLeaf() {
		return Item[T]{Weight: t.w, Value: t.value}, 0, nil
	}
	if path&1 == 1 {
		removed, lb, r := uninsertPath(t.right, path>>1)
		lb += t.left.w
		if r == nil {
			return removed, lb, t.left
		}
		return removed, lb, node(t.w-removed.Weight, t.left, r)
	}
	removed, lb, l := uninsertPath(t.left, path>>1)
	if l == nil {
		return removed, lb, t.right
	}
	return removed, lb, node(t.w-removed.Weight, l, t.right)
}

// RemoveIndex removes the element whose bucket contains index i and returns
// it with the remaining urn, or nil when the urn had size 1.
//
// Only the most recently inserted element can be detached without reshaping
// the tree, so RemoveIndex uninserts that element first. If its old bucket
// is not the one containing i, the detached pair is written back over the
// actual target via ReplaceIndex (with i shifted down by the detached
// weight when the target sat to the right of the vanished bucket), and the
// displaced pair is returned instead. Requires i < u.Weight().
func (u *Urn[T]) RemoveIndex(i Index) (Item[T], *Urn[T]) {
	checkIndex(i, u.Weight())
	removed, lb, rest := u.Uninsert()
	if rest == nil {
		return removed, nil
	}
	switch {
	case i < lb:
		old, final := rest.ReplaceIndex(removed.Weight, removed.Value, i)
		return old, final
	case i < lb+removed.Weight:
		return removed, rest
	default:
		old, final := rest.ReplaceIndex(removed.Weight, removed.Value, i-removed.Weight)
		return old, final
	}
}
