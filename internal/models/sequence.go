package models

// Sequence is a durable named counter, used to give sets unique names.
// Rows are inserted and bumped with raw SQL in repos.SequenceRepo, so the
// column names must stay `key` and `val`.
type Sequence struct {
	Key string `gorm:"primaryKey"`
	Val uint
}
