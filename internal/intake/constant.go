package intake

// User-facing prompts and replies for the intake sequence.
const (
	PromptTitle       = "Enter the task title:"
	PromptDescription = "Enter the task description:"
	PromptDeadline    = "Enter the deadline (DD, DD.MM or DD.MM.YYYY, optionally HH:MM):"
	PromptPriority    = "Enter the priority (1 - low, 2 - medium, 3 - high, 4 - critical):"

	ReplyEmptyTitle    = "The title cannot be empty. " + PromptTitle
	ReplyBadPriority   = "Priority must be a number from 1 to 4. Try again."
	ReplySaved         = "✅ Task created!"
	ReplyCancelled     = "Task creation cancelled."
	ReplyNothingActive = "Nothing to cancel."

	replyBadDeadlineFormat = "Bad deadline: %v. Try again."
)
