package goals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitsphere/fitsphere/internal/fitness/bodymetrics"
	"github.com/fitsphere/fitsphere/internal/fitness/records"
	"github.com/fitsphere/fitsphere/internal/metrics"
	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

type goalsRepo interface {
	FindActive(ctx context.Context) ([]Goal, error)
	FindActiveForUser(ctx context.Context, userID string) ([]Goal, error)
	Update(ctx context.Context, goal *Goal) error
	UpdateProgress(ctx context.Context, id string, update ProgressUpdate) error
}

type metricsSource interface {
	FindRecent(ctx context.Context, userID string, limit int) ([]bodymetrics.BodyMetric, error)
}

type recordsSource interface {
	Find(ctx context.Context, userID, exerciseID string) (*records.PersonalRecord, error)
}

type completionsSource interface {
	CountInWindow(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// Refresher recomputes and persists goal progress from the current fitness
// data. It is shared by the request handlers (live refresh after new data
// arrives) and the recurring progress sweep.
type Refresher struct {
	goals          goalsRepo
	bodyMetrics    metricsSource
	records        recordsSource
	completions    completionsSource
	metricsManager *metrics.Manager
}

func NewRefresher(
	goals goalsRepo,
	bodyMetrics metricsSource,
	records recordsSource,
	completions completionsSource,
	metricsManager *metrics.Manager,
) *Refresher {
	return &Refresher{
		goals:          goals,
		bodyMetrics:    bodyMetrics,
		records:        records,
		completions:    completions,
		metricsManager: metricsManager,
	}
}

// RefreshGoal recomputes one goal and persists the outcome. Terminal and
// custom goals are left alone. Returns whether anything was stored.
func (r *Refresher) RefreshGoal(ctx context.Context, goal *Goal) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrefresher.refreshGoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if goal.Status != StatusActive || goal.Type == TypeCustom {
		return false, nil
	}

	input, err := r.progressInput(ctx, goal)
	if err != nil {
		return false, fmt.Errorf("gather progress input: %w", err)
	}

	update, err := ComputeProgress(*goal, input)
	if err != nil {
		return false, err
	}
	if update.Empty() {
		return false, nil
	}

	goal.CurrentValue = update.CurrentValue
	if update.CurrentProgress != nil {
		goal.CurrentProgress = update.CurrentProgress
	}

	if update.CompletionDetected {
		if err := Transition(goal, StatusCompleted, time.Now()); err != nil {
			return false, err
		}
		if err := r.goals.Update(ctx, goal); err != nil {
			return false, fmt.Errorf("store completed goal: %w", err)
		}
		r.metricsManager.CounterGoalsCompleted.Inc()
		log.Debugf("goal %s [%s] completed, progress 100", goal.ID, goal.Type)
		return true, nil
	}

	if err := r.goals.UpdateProgress(ctx, goal.ID, update); err != nil {
		return false, fmt.Errorf("store goal progress: %w", err)
	}

	return true, nil
}

// RefreshUserGoals refreshes all of a user's active goals. A failure on one
// goal does not stop the others.
func (r *Refresher) RefreshUserGoals(ctx context.Context, userID string) error {
	goals, err := r.goals.FindActiveForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("find active goals: %w", err)
	}

	for i := range goals {
		goal := &goals[i]
		if _, err := r.RefreshGoal(ctx, goal); err != nil {
			log.Errorf("refresh goal %s for user %s: %s", goal.ID, userID, err)
		}
	}

	return nil
}

func (r *Refresher) progressInput(ctx context.Context, goal *Goal) (ProgressInput, error) {
	var input ProgressInput

	switch goal.Type {
	case TypeWeight, TypeBodyFat:
		recent, err := r.bodyMetrics.FindRecent(ctx, goal.UserID, 1)
		if err != nil {
			return input, err
		}
		if len(recent) > 0 {
			input.MeasuredWeight = recent[0].WeightKilos
			input.MeasuredBodyFat = recent[0].BodyFatPercent
		}
	case TypeStrength:
		if goal.Target.Strength == nil {
			return input, ErrMalformedTarget
		}
		rec, err := r.records.Find(ctx, goal.UserID, goal.Target.Strength.ExerciseID)
		if err != nil {
			if errors.Is(err, records.ErrRecordNotFound) {
				return input, nil
			}
			return input, err
		}
		input.RecordKilos = &rec.Kilos
		input.RecordReps = &rec.Reps
	case TypeWorkoutFrequency:
		days, _, err := goal.FrequencyWindow()
		if err != nil {
			return input, err
		}
		now := time.Now()
		count, err := r.completions.CountInWindow(ctx, goal.UserID, now.AddDate(0, 0, -days), now)
		if err != nil {
			return input, err
		}
		input.WorkoutsInWindow = count
	}

	return input, nil
}
