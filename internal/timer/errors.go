package timer

import "errors"

var (
	ErrAlreadyRunning  = errors.New("timer already running")
	ErrNoneRunning     = errors.New("no timer running")
	ErrInvalidDuration = errors.New("duration must be positive")
)
