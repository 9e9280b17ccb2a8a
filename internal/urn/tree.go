package urn

import "fmt"

// Weight is a non-negative integer proportional to an element's chance of
// being drawn. Arithmetic on weights wraps on overflow.
type Weight = uint32

// Index addresses a position in [0, totalWeight) of a tree. Descending by
// cumulative weight maps every index to exactly one leaf.
type Index = Weight

// tree is a weighted binary tree. A leaf (both children nil) holds one
// element; an inner node holds the sum of its children's weights.
// Every node's weight equals the total weight of the leaves below it.
type tree[T any] struct {
	w     Weight
	value T
	left  *tree[T]
	right *tree[T]
}

func leaf[T any](w Weight, value T) *tree[T] {
	return &tree[T]{w: w, value: value}
}

func node[T any](w Weight, l, r *tree[T]) *tree[T] {
	return &tree[T]{w: w, left: l, right: r}
}

// join builds a node over two subtrees, summing their weights.
func join[T any](l, r *tree[T]) *tree[T] {
	return node(l.w+r.w, l, r)
}

func (t *tree[T]) isLeaf() bool {
	return t.left == nil
}

// sampleIndex returns the value of the leaf whose cumulative-weight bucket
// contains i. Requires i < t.w.
func (t *tree[T]) sampleIndex(i Index) T {
	if t.isLeaf() {
		return t.value
	}
	if i < t.left.w {
		return t.left.sampleIndex(i)
	}
	return t.right.sampleIndex(i - t.left.w)
}

// updateIndex applies f to the leaf at index i and returns the old pair,
// the new pair and the updated tree. Only nodes on the path to the leaf are
// rebuilt; siblings are shared with the original tree.
func (t *tree[T]) updateIndex(f func(Weight, T) (Weight, T), i Index) (Item[T], Item[T], *tree[T]) {
	if t.isLeaf() {
		w, value := f(t.w, t.value)
		return Item[T]{Weight: t.w, Value: t.value}, Item[T]{Weight: w, Value: value}, leaf(w, value)
	}
	if i < t.left.w {
		old, upd, l := t.left.updateIndex(f, i)
		return old, upd, node(t.w-old.Weight+upd.Weight, l, t.right)
	}
	old, upd, r := t.right.updateIndex(f, i-t.left.w)
	return old, upd, node(t.w-old.Weight+upd.Weight, t.left, r)
}

// replaceIndex overwrites the leaf at index i with (w, value) and returns
// the pair it replaced.
func (t *tree[T]) replaceIndex(w Weight, value T, i Index) (Item[T], *tree[T]) {
	if t.isLeaf() {
		return Item[T]{Weight: t.w, Value: t.value}, leaf(w, value)
	}
	if i < t.left.w {
		old, l := t.left.replaceIndex(w, value, i)
		return old, node(t.w-old.Weight+w, l, t.right)
	}
	old, r := t.right.replaceIndex(w, value, i-t.left.w)
	return old, node(t.w-old.Weight+w, t.left, r)
}

func checkIndex(i Index, w Weight) {
	if i >= w {
		panic(fmt.Sprintf("urn: index %d out of range [0, %d)", i, w))
	}
}
