package scheduler

import "errors"

var (
	// ErrInvalidSchedule is returned for cron expressions robfig/cron rejects
	ErrInvalidSchedule = errors.New("invalid cron schedule")

	// ErrDuplicateJob is returned when a job name is registered twice
	ErrDuplicateJob = errors.New("job already registered")

	// ErrAlreadyStarted is returned when jobs are registered after Start
	ErrAlreadyStarted = errors.New("scheduler already started")
)
