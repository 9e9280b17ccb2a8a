package models

import "time"

// DrawOp is the urn operation a draw record was produced by.
type DrawOp string

const (
	OpSample   DrawOp = "sample"
	OpInsert   DrawOp = "insert"
	OpUninsert DrawOp = "uninsert"
	OpRemove   DrawOp = "remove"
	OpReplace  DrawOp = "replace"
	OpUpdate   DrawOp = "update"
)

// Draw is one recorded urn operation.
type Draw struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// ItemSetID is the set the urn was built from.
	ItemSetID *uint

	// The node that executed the operation.
	Exitnode string

	// Op that produced this record.
	Op DrawOp

	// Urn state before the operation.
	UrnSize   uint32
	UrnWeight uint32

	// Index passed to the deterministic operation, when one was drawn.
	Index *uint32

	// Result is available only for finished draws.
	DrawResult
}

// DrawResult is available only for finished draws.
type DrawResult struct {
	// IsFinished is true if the draw is fully finished, and no process
	// will update it in the future.
	IsFinished bool

	// Label and weight of the element the operation returned.
	Label  string
	Weight uint32

	// Error message if the operation failed.
	Error string
	// IsFailed is true if the operation failed.
	IsFailed bool

	// Timestamp when the operation was started.
	StartedAt *time.Time
	// Timestamp when the operation was finished.
	FinishedAt *time.Time
	// Duration is the duration of the operation.
	Duration *time.Duration
}
