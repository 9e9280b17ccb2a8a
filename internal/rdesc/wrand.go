package rdesc

import "github.com/petuhovskiy/urn-lights/internal/urn"

// Wrand is a weighted list of options, usually configured in rule args.
type Wrand[T any] []WrandItem[T]

type WrandItem[T any] struct {
	Weight uint32
	Item   T
}

// Pick draws one item with probability proportional to its weight.
// Panics on an empty list or zero total weight.
func (w Wrand[T]) Pick(src urn.Source) T {
	items := make([]urn.Item[T], 0, len(w))
	for _, it := range w {
		items = append(items, urn.Item[T]{Weight: it.Weight, Value: it.Item})
	}
	return urn.FromItems(items).Sample(src)
}
