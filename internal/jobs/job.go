package jobs

import (
	"context"
	"time"
)

const (
	JobExpireGoals        = "expire-goals"
	JobUpdateGoalProgress = "update-goal-progress"
	JobCleanupOldLogs     = "cleanup-old-logs"
)

type ResultStatus string

const (
	StatusRunning ResultStatus = "running"
	StatusSuccess ResultStatus = "success"
	StatusFailure ResultStatus = "failure"
)

// Definition describes one maintenance job: its stable name, the cron
// schedule of its recurring trigger, and whether that trigger is installed
// on startup. Manual execution ignores Enabled.
type Definition struct {
	Name        string `json:"name"`
	Schedule    string `json:"schedule"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// Result is the audit outcome of a single job execution.
type Result struct {
	ID             int64         `json:"id,omitempty"`
	JobName        string        `json:"jobName"`
	Status         ResultStatus  `json:"status"`
	StartTime      time.Time     `json:"startTime"`
	EndTime        time.Time     `json:"endTime"`
	Duration       time.Duration `json:"duration"`
	ItemsProcessed int           `json:"itemsProcessed"`
	Message        string        `json:"message,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// Runner is a single job implementation. A run reports how many items it
// processed and a short human readable message; a returned error marks the
// whole run as failed.
type Runner interface {
	Run(ctx context.Context) (itemsProcessed int, message string, err error)
}

// Schedules carries the configured cron expressions for the built-in jobs.
type Schedules struct {
	ExpireGoals        string
	UpdateGoalProgress string
	CleanupOldLogs     string
}

func Definitions(schedules Schedules) []Definition {
	return []Definition{
		{
			Name:        JobExpireGoals,
			Schedule:    schedules.ExpireGoals,
			Enabled:     true,
			Description: "Transition active goals with a passed deadline to expired",
		},
		{
			Name:        JobUpdateGoalProgress,
			Schedule:    schedules.UpdateGoalProgress,
			Enabled:     true,
			Description: "Recompute progress for all active goals",
		},
		{
			Name:        JobCleanupOldLogs,
			Schedule:    schedules.CleanupOldLogs,
			Enabled:     true,
			Description: "Delete job execution logs past the retention period",
		},
	}
}
