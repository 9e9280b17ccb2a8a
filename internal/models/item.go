package models

import "gorm.io/gorm"

// Item is one weighted element of a set. The items of a set, ordered by
// position, are the leaves the urn is built from.
type Item struct {
	gorm.Model

	// ItemSetID is a foreign key to the set.
	ItemSetID uint

	// Position of the item within the set.
	Position uint

	// Label identifies the element in draw records.
	Label string

	// Weight is proportional to the element's chance of being drawn.
	Weight uint32
}
