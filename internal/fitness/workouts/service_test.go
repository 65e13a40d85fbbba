package workouts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitsphere/fitsphere/internal/fitness/records"
	"github.com/fitsphere/fitsphere/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completionsRepoMock struct {
	added []Completion
}

func (m *completionsRepoMock) Add(_ context.Context, completion Completion) (*Completion, error) {
	m.added = append(m.added, completion)
	return &completion, nil
}

func (m *completionsRepoMock) ListInWindow(_ context.Context, userID string, from, to time.Time) ([]Completion, error) {
	var found []Completion
	for _, c := range m.added {
		if c.UserID == userID && !c.CompletedAt.Before(from) && !c.CompletedAt.After(to) {
			found = append(found, c)
		}
	}
	return found, nil
}

func (m *completionsRepoMock) CountInWindow(ctx context.Context, userID string, from, to time.Time) (int, error) {
	found, err := m.ListInWindow(ctx, userID, from, to)
	return len(found), err
}

type recordUpserterMock struct {
	candidates []records.Candidate
	failFor    map[string]bool // exercise ids whose upsert fails
	isNewFor   map[string]bool
}

func (m *recordUpserterMock) Upsert(_ context.Context, userID string, candidate records.Candidate) (*records.UpsertResult, error) {
	if m.failFor[candidate.ExerciseID] {
		return nil, errors.New("records db down")
	}
	m.candidates = append(m.candidates, candidate)

	isNew := m.isNewFor == nil || m.isNewFor[candidate.ExerciseID]
	return &records.UpsertResult{
		Record: &records.PersonalRecord{
			UserID:       userID,
			ExerciseID:   candidate.ExerciseID,
			ExerciseName: candidate.ExerciseName,
			Kilos:        candidate.Kilos,
			Reps:         candidate.Reps,
		},
		IsNew:    isNew,
		Improved: !isNew,
	}, nil
}

type goalRefresherMock struct {
	refreshedUsers []string
	err            error
}

func (m *goalRefresherMock) RefreshUserGoals(_ context.Context, userID string) error {
	m.refreshedUsers = append(m.refreshedUsers, userID)
	return m.err
}

func TestCompleteWorkout_RecordsAndRefresh(t *testing.T) {
	repo := &completionsRepoMock{}
	upserter := &recordUpserterMock{}
	refresher := &goalRefresherMock{}
	service := NewService(repo, upserter, refresher, metrics.NewTestManager())

	result, err := service.CompleteWorkout(context.Background(), Completion{
		UserID: "user1",
		Exercises: []CompletedExercise{
			{
				ExerciseID:   "bench-press",
				ExerciseName: "Bench Press",
				Kilos:        []float64{60, 80, 70},
				Reps:         []int{10, 5, 8},
			},
			{
				ExerciseID:   "pull-up",
				ExerciseName: "Pull Up",
				Kilos:        []float64{0, 0}, // bodyweight only, no candidate
				Reps:         []int{12, 10},
			},
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.added, 1)
	assert.NotEmpty(t, result.Completion.ID)
	assert.False(t, result.Completion.CompletedAt.IsZero())

	// only the weighted exercise produced a record candidate, from its
	// heaviest set
	require.Len(t, upserter.candidates, 1)
	candidate := upserter.candidates[0]
	assert.Equal(t, "bench-press", candidate.ExerciseID)
	assert.Equal(t, 80.0, candidate.Kilos)
	assert.Equal(t, 5, candidate.Reps)
	assert.Equal(t, result.Completion.ID, candidate.SourceCompletionID)

	require.Len(t, result.NewRecords, 1)
	assert.Equal(t, "bench-press", result.NewRecords[0].ExerciseID)

	assert.Equal(t, []string{"user1"}, refresher.refreshedUsers)
}

func TestCompleteWorkout_ExerciseFailureIsolated(t *testing.T) {
	repo := &completionsRepoMock{}
	upserter := &recordUpserterMock{failFor: map[string]bool{"squat": true}}
	refresher := &goalRefresherMock{}
	service := NewService(repo, upserter, refresher, metrics.NewTestManager())

	result, err := service.CompleteWorkout(context.Background(), Completion{
		UserID: "user1",
		Exercises: []CompletedExercise{
			{ExerciseID: "squat", Kilos: []float64{120}, Reps: []int{5}},
			{ExerciseID: "deadlift", Kilos: []float64{150}, Reps: []int{3}},
		},
	})
	require.NoError(t, err)

	// squat upsert failed, deadlift still got its record
	require.Len(t, result.NewRecords, 1)
	assert.Equal(t, "deadlift", result.NewRecords[0].ExerciseID)
	assert.Equal(t, []string{"user1"}, refresher.refreshedUsers)
}

func TestCompleteWorkout_RefreshFailureDoesNotFailCall(t *testing.T) {
	repo := &completionsRepoMock{}
	upserter := &recordUpserterMock{}
	refresher := &goalRefresherMock{err: errors.New("goals db down")}
	service := NewService(repo, upserter, refresher, metrics.NewTestManager())

	result, err := service.CompleteWorkout(context.Background(), Completion{
		UserID:    "user1",
		Exercises: []CompletedExercise{{ExerciseID: "squat", Kilos: []float64{120}, Reps: []int{5}}},
	})
	require.NoError(t, err)
	require.Len(t, repo.added, 1)
	assert.NotNil(t, result.Completion)
}

func TestCompleteWorkout_ExplicitCompletedAtKept(t *testing.T) {
	repo := &completionsRepoMock{}
	service := NewService(repo, &recordUpserterMock{}, &goalRefresherMock{}, metrics.NewTestManager())

	completedAt := time.Date(2026, 8, 20, 18, 30, 0, 0, time.UTC)
	result, err := service.CompleteWorkout(context.Background(), Completion{
		UserID:      "user1",
		CompletedAt: completedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, completedAt, result.Completion.CompletedAt)
	assert.Empty(t, result.NewRecords)
}
