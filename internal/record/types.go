package record

import (
	"time"

	"deadline-buddy/internal/model"
)

// CreateInput is the input for record creation. DeadlineText is the
// canonical string produced by the deadline normalizer; DeadlineAt is the
// same instant parsed.
type CreateInput struct {
	Title        string
	Description  string
	DeadlineText string
	DeadlineAt   time.Time
	Priority     model.Priority
}
