package jobs

import (
	"context"
	"fmt"

	"github.com/fitsphere/fitsphere/internal/fitness/goals"

	log "github.com/sirupsen/logrus"
)

type activeGoalsSource interface {
	FindActive(ctx context.Context) ([]goals.Goal, error)
}

type goalRefresher interface {
	RefreshGoal(ctx context.Context, goal *goals.Goal) (bool, error)
}

// UpdateGoalProgressJob recomputes progress for every active goal. Failures
// are isolated per goal, the sweep always visits all of them.
type UpdateGoalProgressJob struct {
	goals     activeGoalsSource
	refresher goalRefresher
}

func NewUpdateGoalProgressJob(goalsSource activeGoalsSource, refresher goalRefresher) *UpdateGoalProgressJob {
	return &UpdateGoalProgressJob{
		goals:     goalsSource,
		refresher: refresher,
	}
}

func (j *UpdateGoalProgressJob) Run(ctx context.Context) (int, string, error) {
	active, err := j.goals.FindActive(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("find active goals: %w", err)
	}

	updated := 0
	failed := 0
	for i := range active {
		goal := &active[i]
		stored, err := j.refresher.RefreshGoal(ctx, goal)
		if err != nil {
			failed++
			log.Errorf("update goal progress: goal %s: %s", goal.ID, err)
			continue
		}
		if stored {
			updated++
		}
	}

	message := fmt.Sprintf("updated %d of %d active goals", updated, len(active))
	if failed > 0 {
		message = fmt.Sprintf("%s, %d failed", message, failed)
	}

	return updated, message, nil
}
