package urn

import "math/rand"

// Source supplies the randomness for the randomized urn operations.
// UniformWeight must return a uniformly distributed value in [0, hi],
// inclusive on both ends.
type Source interface {
	UniformWeight(hi Weight) Weight
}

// NewRandSource wraps a math/rand generator as a Source. The generator is
// not safe for concurrent use unless it is (e.g. the global one).
func NewRandSource(r *rand.Rand) Source {
	return randSource{r: r}
}

type randSource struct {
	r *rand.Rand
}

func (s randSource) UniformWeight(hi Weight) Weight {
	return Weight(s.r.Int63n(int64(hi) + 1))
}

// drawIndex draws an index in [0, Weight()). Source is inclusive on both
// ends, so the upper bound passed is Weight()-1: an index equal to the
// total weight would fall past the rightmost leaf. Requires Weight() > 0.
func (u *Urn[T]) drawIndex(src Source) Index {
	return src.UniformWeight(u.Weight() - 1)
}

// Sample draws one element, each with probability proportional to its
// weight.
func (u *Urn[T]) Sample(src Source) T {
	return u.SampleIndex(u.drawIndex(src))
}

// Update applies f to a randomly chosen element, like UpdateIndex.
func (u *Urn[T]) Update(src Source, f func(Weight, T) (Weight, T)) (Item[T], Item[T], *Urn[T]) {
	return u.UpdateIndex(f, u.drawIndex(src))
}

// Replace swaps a randomly chosen element for (w, value) and returns the
// displaced pair.
func (u *Urn[T]) Replace(src Source, w Weight, value T) (Item[T], *Urn[T]) {
	return u.ReplaceIndex(w, value, u.drawIndex(src))
}

// Remove removes a randomly chosen element and returns it with the
// remaining urn, or nil when the urn had size 1.
func (u *Urn[T]) Remove(src Source) (Item[T], *Urn[T]) {
	return u.RemoveIndex(u.drawIndex(src))
}
