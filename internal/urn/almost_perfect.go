package urn

import (
	"fmt"
	"math/bits"
)

// reverseBits reverses the lowest n bits of x, e.g. reverseBits(3, 0b110)
// is 0b011. Bits above the lowest n are discarded.
func reverseBits(n, x uint32) uint32 {
	var r uint32
	for ; n > 0; n-- {
		r = r<<1 | x&1
		x >>= 1
	}
	return r
}

// almostPerfect builds a tree from items in one linear pass. The result has
// all leaves at depth d or d+1, where d = floor(log2(len(items))).
//
// A perfect tree of depth d holds 2^d leaves; the remaining
// len(items) - 2^d elements are absorbed by turning some depth-d slots into
// two-leaf subtrees. Slot number pos becomes a double slot iff
// reverseBits(d, pos) < remainder, which spreads the extra leaves evenly
// across the tree instead of clustering them on the left.
func almostPerfect[T any](items []Item[T]) *tree[T] {
	n := uint32(len(items))
	perfectDepth := uint32(bits.Len32(n) - 1)
	remainder := n - 1<<perfectDepth

	t, _, _ := buildSlots(perfectDepth, 0, items, n, perfectDepth, remainder)
	return t
}

// buildSlots constructs a subtree of the given depth, consuming a prefix of
// items. It returns the subtree, the unconsumed remainder of items and the
// slot position after this subtree.
func buildSlots[T any](depth, pos uint32, items []Item[T], total, perfectDepth, remainder uint32) (*tree[T], []Item[T], uint32) {
	if depth == 0 {
		if reverseBits(perfectDepth, pos) < remainder {
			if len(items) < 2 {
				panic(fmt.Sprintf("urn: expected %d items but input ran out after %d", total, total-uint32(len(items))))
			}
			l, r := items[0], items[1]
			return join(leaf(l.Weight, l.Value), leaf(r.Weight, r.Value)), items[2:], pos + 1
		}
		if len(items) < 1 {
			panic(fmt.Sprintf("urn: expected %d items but input ran out after %d", total, total-uint32(len(items))))
		}
		it := items[0]
		return leaf(it.Weight, it.Value), items[1:], pos + 1
	}

	l, rest, next := buildSlots(depth-1, pos, items, total, perfectDepth, remainder)
	r, rest, next := buildSlots(depth-1, next, rest, total, perfectDepth, remainder)
	return join(l, r), rest, next
}
