package rules

import (
	"github.com/petuhovskiy/urn-lights/internal/models"
	"github.com/petuhovskiy/urn-lights/internal/urn"
)

// catalogUrn builds the urn for a catalog, feeding items in position order.
// Returns nil for an empty catalog.
func catalogUrn(items []models.Item) *urn.Urn[string] {
	elems := make([]urn.Item[string], 0, len(items))
	for _, it := range items {
		elems = append(elems, urn.Item[string]{Weight: it.Weight, Value: it.Label})
	}
	return urn.FromItems(elems)
}

// catalogItems converts urn contents back into catalog rows, in leaf order.
func catalogItems(u *urn.Urn[string]) []models.Item {
	elems := u.Items()
	items := make([]models.Item, 0, len(elems))
	for i, el := range elems {
		items = append(items, models.Item{
			Position: uint(i),
			Label:    el.Value,
			Weight:   el.Weight,
		})
	}
	return items
}
