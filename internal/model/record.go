package model

import "time"

// Priority of a record, 1 (low) through 4 (critical).
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

// Valid reports whether p is one of the four allowed priorities.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// Label returns the human-readable priority name.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// RecordStatus is the lifecycle status of a record.
type RecordStatus string

const (
	RecordStatusActive RecordStatus = "active"
)

// Record is a finished task record as persisted in SQLite.
// DeadlineText is the canonical "DD.MM.YYYY HH:MM" string produced by the
// deadline normalizer; it is the stored representation, DeadlineAt is the
// parsed instant kept for in-process consumers (calendar mirror).
type Record struct {
	ID           int64
	UserID       int64
	Title        string
	Description  string
	DeadlineText string
	DeadlineAt   time.Time
	Priority     Priority
	Status       RecordStatus
	CreatedAt    time.Time
	Deleted      bool
}
