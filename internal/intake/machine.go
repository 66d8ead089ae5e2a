// Package intake implements the step-sequenced dialogue that turns four
// independent free-text messages into one validated record.
package intake

import (
	"fmt"
	"strings"
	"time"

	"deadline-buddy/internal/model"
	"deadline-buddy/pkg/deadline"
)

// Machine is the pure transition function of the intake sequence. It holds
// no per-user state; callers pass the session in and get the next one back,
// which keeps every transition unit-testable without transport or storage.
type Machine struct {
	dates *deadline.Parser
}

// NewMachine creates the intake transition machine.
func NewMachine(dates *deadline.Parser) *Machine {
	return &Machine{dates: dates}
}

// Advance applies one user message to the session. Invalid input never
// advances the step: the effect carries a re-prompt and the caller retries
// indefinitely. When the returned session's step is StepDone the draft is
// complete and the effect has Done set.
func (m *Machine) Advance(s Session, input string, now time.Time) (Session, Effect) {
	switch s.Step {
	case StepTitle:
		title := strings.TrimSpace(input)
		if title == "" {
			return s, Effect{Reply: ReplyEmptyTitle}
		}
		s.Draft.Title = title
		s.Step = StepDescription
		return s, Effect{Reply: PromptDescription}

	case StepDescription:
		s.Draft.Description = input
		s.Step = StepDeadline
		return s, Effect{Reply: PromptDeadline}

	case StepDeadline:
		normalized, err := m.dates.Normalize(input, now)
		if err != nil {
			return s, Effect{Reply: fmt.Sprintf(replyBadDeadlineFormat, err)}
		}
		s.Draft.DeadlineText = normalized.Text
		s.Draft.DeadlineAt = normalized.At
		s.Step = StepPriority
		return s, Effect{Reply: PromptPriority}

	case StepPriority:
		priority, ok := parsePriority(input)
		if !ok {
			return s, Effect{Reply: ReplyBadPriority}
		}
		s.Draft.Priority = priority
		s.Step = StepDone
		return s, Effect{Reply: ReplySaved, Done: true}
	}

	// StepDone sessions are removed by the manager before the next message
	// arrives; reaching here means a caller bug.
	return s, Effect{}
}

// Prompt returns the prompt for the session's current step, used when
// (re)entering the sequence.
func Prompt(step Step) string {
	switch step {
	case StepTitle:
		return PromptTitle
	case StepDescription:
		return PromptDescription
	case StepDeadline:
		return PromptDeadline
	case StepPriority:
		return PromptPriority
	}
	return ""
}

// parsePriority accepts exactly "1".."4".
func parsePriority(input string) (model.Priority, bool) {
	switch strings.TrimSpace(input) {
	case "1":
		return model.PriorityLow, true
	case "2":
		return model.PriorityMedium, true
	case "3":
		return model.PriorityHigh, true
	case "4":
		return model.PriorityCritical, true
	}
	return 0, false
}
