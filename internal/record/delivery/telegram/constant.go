package telegram

// Main menu button labels. These arrive back as plain message text, so
// the handler matches them verbatim.
const (
	ButtonAddTask  = "📝 Add task"
	ButtonTaskList = "📋 Task list"
	ButtonDelete   = "🗑 Delete task"
	ButtonPomodoro = "⏱ Pomodoro timer"
	ButtonActivity = "📊 My activity"
)

// Callback data values for inline keyboards.
const (
	callbackWork25       = "work_25"
	callbackRest5        = "rest_5"
	callbackRest15       = "rest_15"
	callbackStopTimer    = "stop_timer"
	callbackDeletePrefix = "delete_"
)

const (
	messageGreeting = "👋 Hi! I help you track tasks with deadlines and stay focused.\n\nUse the menu below to get started."
	messageHint     = "I didn't get that. Use the menu buttons or /start."

	messageNoRecords       = "You have no tasks yet. Tap \"" + ButtonAddTask + "\" to create one."
	messageDeletePick      = "Pick a task to delete:"
	messageDeleted         = "🗑 Task deleted."
	messageDeleteFailed    = "Could not delete the task. It may be gone already."
	messagePomodoroPick    = "Pick a session:"
	messageTimerRunning    = "A timer is already running. Stop it first."
	messageNoTimer         = "No timer is running."
	messageActivityEmpty   = "No activity yet. Create a task or run a focus session."
	messageProcessingError = "Something went wrong while handling your request. Please try again."
)
