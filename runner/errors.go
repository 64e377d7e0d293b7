package runner

import "errors"

var (
	ErrDependencyCycle = errors.New("task dependency cycle")
	ErrInvalidSchedule = errors.New("invalid cron schedule")
	ErrNoTasks         = errors.New("no tasks given")
)
