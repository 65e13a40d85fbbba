package workouts

import (
	"context"
	"fmt"
	"time"

	"github.com/fitsphere/fitsphere/internal/fitness/records"
	"github.com/fitsphere/fitsphere/internal/metrics"
	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type completionsRepo interface {
	Add(ctx context.Context, completion Completion) (*Completion, error)
	ListInWindow(ctx context.Context, userID string, from, to time.Time) ([]Completion, error)
	CountInWindow(ctx context.Context, userID string, from, to time.Time) (int, error)
}

type recordUpserter interface {
	Upsert(ctx context.Context, userID string, candidate records.Candidate) (*records.UpsertResult, error)
}

type goalRefresher interface {
	RefreshUserGoals(ctx context.Context, userID string) error
}

// CompletionResult is the response to a completed workout: the stored
// completion plus every personal record the workout created or improved.
type CompletionResult struct {
	Completion *Completion             `json:"completion"`
	NewRecords []records.PersonalRecord `json:"newRecords"`
}

type Service struct {
	repo           completionsRepo
	upserter       recordUpserter
	refresher      goalRefresher
	metricsManager *metrics.Manager
}

func NewService(
	repo completionsRepo,
	upserter recordUpserter,
	refresher goalRefresher,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:           repo,
		upserter:       upserter,
		refresher:      refresher,
		metricsManager: metricsManager,
	}
}

// CompleteWorkout stores the completion, then derives a record candidate per
// exercise and refreshes the user's goals. Record and refresh failures do
// not fail the call, the completion itself is already stored.
func (s *Service) CompleteWorkout(ctx context.Context, completion Completion) (_ *CompletionResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsservice.completeWorkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := time.Now()
	completion.ID = uuid.NewString()
	completion.CreatedAt = now
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = now
	}

	added, err := s.repo.Add(ctx, completion)
	if err != nil {
		return nil, fmt.Errorf("store workout completion: %w", err)
	}
	s.metricsManager.CounterWorkoutsCompleted.Inc()

	result := &CompletionResult{
		Completion: added,
		NewRecords: []records.PersonalRecord{},
	}

	// Each exercise is checked on its own, a failed record upsert must not
	// swallow the records of the remaining exercises.
	for _, exercise := range added.Exercises {
		kilos, reps, ok := records.BestSet(exercise.Kilos, exercise.Reps)
		if !ok {
			continue
		}

		upserted, err := s.upserter.Upsert(ctx, added.UserID, records.Candidate{
			ExerciseID:         exercise.ExerciseID,
			ExerciseName:       exercise.ExerciseName,
			Kilos:              kilos,
			Reps:               reps,
			AchievedAt:         added.CompletedAt,
			SourceCompletionID: added.ID,
		})
		if err != nil {
			log.Errorf(
				"workout %s: record upsert for exercise %s: %s",
				added.ID, exercise.ExerciseID, err,
			)
			continue
		}

		if upserted.IsNew || upserted.Improved {
			result.NewRecords = append(result.NewRecords, *upserted.Record)
		}
	}

	if err := s.refresher.RefreshUserGoals(ctx, added.UserID); err != nil {
		log.Errorf("workout %s: refresh goals for user %s: %s", added.ID, added.UserID, err)
	}

	return result, nil
}

func (s *Service) ListInWindow(ctx context.Context, userID string, from, to time.Time) ([]Completion, error) {
	return s.repo.ListInWindow(ctx, userID, from, to)
}
