package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/fitsphere/fitsphere/internal/fitness/goals"
	"github.com/fitsphere/fitsphere/internal/metrics"

	log "github.com/sirupsen/logrus"
)

type expirableGoalsStore interface {
	FindActive(ctx context.Context) ([]goals.Goal, error)
	Update(ctx context.Context, goal *goals.Goal) error
}

// ExpireGoalsJob sweeps all active goals and expires those with a passed
// deadline. One goal failing to store does not stop the sweep.
type ExpireGoalsJob struct {
	goals          expirableGoalsStore
	metricsManager *metrics.Manager
}

func NewExpireGoalsJob(goalsStore expirableGoalsStore, metricsManager *metrics.Manager) *ExpireGoalsJob {
	return &ExpireGoalsJob{
		goals:          goalsStore,
		metricsManager: metricsManager,
	}
}

func (j *ExpireGoalsJob) Run(ctx context.Context) (int, string, error) {
	active, err := j.goals.FindActive(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("find active goals: %w", err)
	}

	now := time.Now()
	expired := 0
	for i := range active {
		goal := &active[i]
		if !goals.ShouldExpire(goal, now) {
			continue
		}

		if err := goals.Transition(goal, goals.StatusExpired, now); err != nil {
			log.Errorf("expire goals: transition goal %s: %s", goal.ID, err)
			continue
		}
		if err := j.goals.Update(ctx, goal); err != nil {
			log.Errorf("expire goals: store goal %s: %s", goal.ID, err)
			continue
		}

		expired++
		j.metricsManager.CounterGoalsExpired.Inc()
	}

	return expired, fmt.Sprintf("expired %d of %d active goals", expired, len(active)), nil
}
