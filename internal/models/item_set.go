package models

import "gorm.io/gorm"

// ItemSet is a named weighted catalog. Urns are built from the items of a
// set, and draw statistics are recorded against it.
type ItemSet struct {
	gorm.Model

	// Name of the set, e.g. "bench@local-laptop-3".
	Name string

	// The node that owns and exercises the set.
	Exitnode string
}
