package model

import "time"

// Activity kinds.
const (
	ActivityKindFocusTimer = "focus_timer"
)

// ActivityEntry is one logged user action, currently only completed focus
// timers. Duration is stored as integer seconds rather than encoded into the
// action text so reports can aggregate with plain SUM().
type ActivityEntry struct {
	ID              int64
	UserID          int64
	Kind            string
	DurationSeconds int64
	CreatedAt       time.Time
}
