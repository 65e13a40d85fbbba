package goals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitsphere/fitsphere/internal/fitness/bodymetrics"
	"github.com/fitsphere/fitsphere/internal/fitness/records"
	"github.com/fitsphere/fitsphere/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goalsRepoMock struct {
	goals           map[string]*Goal
	updated         map[string]Goal
	progressUpdates map[string]ProgressUpdate
}

func newGoalsRepoMock(goals ...*Goal) *goalsRepoMock {
	m := &goalsRepoMock{
		goals:           make(map[string]*Goal),
		updated:         make(map[string]Goal),
		progressUpdates: make(map[string]ProgressUpdate),
	}
	for _, g := range goals {
		m.goals[g.ID] = g
	}
	return m
}

func (m *goalsRepoMock) Get(_ context.Context, id string) (*Goal, error) {
	goal, ok := m.goals[id]
	if !ok {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

func (m *goalsRepoMock) FindActive(_ context.Context) ([]Goal, error) {
	var active []Goal
	for _, g := range m.goals {
		if g.Status == StatusActive {
			active = append(active, *g)
		}
	}
	return active, nil
}

func (m *goalsRepoMock) FindActiveForUser(_ context.Context, userID string) ([]Goal, error) {
	var active []Goal
	for _, g := range m.goals {
		if g.UserID == userID && g.Status == StatusActive {
			active = append(active, *g)
		}
	}
	return active, nil
}

func (m *goalsRepoMock) Update(_ context.Context, goal *Goal) error {
	if _, ok := m.goals[goal.ID]; !ok {
		return ErrGoalNotFound
	}
	m.goals[goal.ID] = goal
	m.updated[goal.ID] = *goal
	return nil
}

func (m *goalsRepoMock) UpdateProgress(_ context.Context, id string, update ProgressUpdate) error {
	if _, ok := m.goals[id]; !ok {
		return ErrGoalNotFound
	}
	m.progressUpdates[id] = update
	return nil
}

type metricsSourceMock struct {
	metrics map[string][]bodymetrics.BodyMetric
	err     error
}

func (m *metricsSourceMock) FindRecent(_ context.Context, userID string, limit int) ([]bodymetrics.BodyMetric, error) {
	if m.err != nil {
		return nil, m.err
	}
	found := m.metrics[userID]
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

type recordsSourceMock struct {
	records map[string]*records.PersonalRecord // keyed by exercise id
	err     error
}

func (m *recordsSourceMock) Find(_ context.Context, _, exerciseID string) (*records.PersonalRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[exerciseID]
	if !ok {
		return nil, records.ErrRecordNotFound
	}
	return rec, nil
}

type completionsSourceMock struct {
	count int
	err   error
}

func (m *completionsSourceMock) CountInWindow(_ context.Context, _ string, _, _ time.Time) (int, error) {
	return m.count, m.err
}

func newTestRefresher(
	goalsRepo *goalsRepoMock,
	metricsSrc *metricsSourceMock,
	recordsSrc *recordsSourceMock,
	completionsSrc *completionsSourceMock,
) *Refresher {
	if metricsSrc == nil {
		metricsSrc = &metricsSourceMock{}
	}
	if recordsSrc == nil {
		recordsSrc = &recordsSourceMock{}
	}
	if completionsSrc == nil {
		completionsSrc = &completionsSourceMock{}
	}
	return NewRefresher(goalsRepo, metricsSrc, recordsSrc, completionsSrc, metrics.NewTestManager())
}

func TestRefreshGoal_WeightProgressStored(t *testing.T) {
	goal := &Goal{
		ID:         "g1",
		UserID:     "user1",
		Type:       TypeWeight,
		Status:     StatusActive,
		StartValue: float64Ptr(90),
		Target:     Target{Weight: float64Ptr(80)},
	}
	repo := newGoalsRepoMock(goal)
	refresher := newTestRefresher(repo, &metricsSourceMock{
		metrics: map[string][]bodymetrics.BodyMetric{
			"user1": {{UserID: "user1", WeightKilos: float64Ptr(85)}},
		},
	}, nil, nil)

	stored, err := refresher.RefreshGoal(context.Background(), goal)
	require.NoError(t, err)
	assert.True(t, stored)

	update, ok := repo.progressUpdates["g1"]
	require.True(t, ok)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 50, *update.CurrentProgress, 0.001)
	assert.Equal(t, StatusActive, goal.Status)
}

func TestRefreshGoal_WeightAtTargetStaysActive(t *testing.T) {
	goal := &Goal{
		ID:         "g1",
		UserID:     "user1",
		Type:       TypeWeight,
		Status:     StatusActive,
		StartValue: float64Ptr(90),
		Target:     Target{Weight: float64Ptr(80)},
	}
	repo := newGoalsRepoMock(goal)
	refresher := newTestRefresher(repo, &metricsSourceMock{
		metrics: map[string][]bodymetrics.BodyMetric{
			"user1": {{UserID: "user1", WeightKilos: float64Ptr(80)}},
		},
	}, nil, nil)

	stored, err := refresher.RefreshGoal(context.Background(), goal)
	require.NoError(t, err)
	assert.True(t, stored)

	// hitting the target weight stores 100% but leaves the goal for the
	// owner to complete
	update, ok := repo.progressUpdates["g1"]
	require.True(t, ok)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 100, *update.CurrentProgress, 0.001)
	assert.Equal(t, StatusActive, goal.Status)
	assert.Nil(t, goal.CompletedAt)
	assert.Empty(t, repo.updated)
}

func TestRefreshGoal_StrengthCompletion(t *testing.T) {
	goal := &Goal{
		ID:     "g1",
		UserID: "user1",
		Type:   TypeStrength,
		Status: StatusActive,
		Target: Target{Strength: &StrengthTarget{ExerciseID: "deadlift", Kilos: 180, Reps: 3}},
	}
	repo := newGoalsRepoMock(goal)
	refresher := newTestRefresher(repo, nil, &recordsSourceMock{
		records: map[string]*records.PersonalRecord{
			"deadlift": {ExerciseID: "deadlift", Kilos: 185, Reps: 4},
		},
	}, nil)

	stored, err := refresher.RefreshGoal(context.Background(), goal)
	require.NoError(t, err)
	assert.True(t, stored)

	updated, ok := repo.updated["g1"]
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	require.NotNil(t, updated.CurrentProgress)
	assert.InDelta(t, 100, *updated.CurrentProgress, 0.001)
}

func TestRefreshGoal_StrengthNoRecordNoUpdate(t *testing.T) {
	goal := &Goal{
		ID:     "g1",
		UserID: "user1",
		Type:   TypeStrength,
		Status: StatusActive,
		Target: Target{Strength: &StrengthTarget{ExerciseID: "deadlift", Kilos: 180, Reps: 3}},
	}
	repo := newGoalsRepoMock(goal)
	refresher := newTestRefresher(repo, nil, &recordsSourceMock{}, nil)

	stored, err := refresher.RefreshGoal(context.Background(), goal)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Empty(t, repo.progressUpdates)
	assert.Empty(t, repo.updated)
}

func TestRefreshGoal_FrequencyNeverCompletes(t *testing.T) {
	perWeek := 3
	goal := &Goal{
		ID:     "g1",
		UserID: "user1",
		Type:   TypeWorkoutFrequency,
		Status: StatusActive,
		Target: Target{Frequency: &FrequencyTarget{PerWeek: &perWeek}},
	}
	repo := newGoalsRepoMock(goal)
	refresher := newTestRefresher(repo, nil, nil, &completionsSourceMock{count: 5})

	stored, err := refresher.RefreshGoal(context.Background(), goal)
	require.NoError(t, err)
	assert.True(t, stored)

	update, ok := repo.progressUpdates["g1"]
	require.True(t, ok)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 100, *update.CurrentProgress, 0.001)
	assert.Equal(t, StatusActive, goal.Status)
	assert.Empty(t, repo.updated)
}

func TestRefreshGoal_SkipsCustomAndTerminal(t *testing.T) {
	custom := &Goal{ID: "g1", UserID: "user1", Type: TypeCustom, Status: StatusActive}
	completed := &Goal{
		ID: "g2", UserID: "user1", Type: TypeWeight, Status: StatusCompleted,
		StartValue: float64Ptr(90), Target: Target{Weight: float64Ptr(80)},
	}
	repo := newGoalsRepoMock(custom, completed)
	refresher := newTestRefresher(repo, nil, nil, nil)

	for _, goal := range []*Goal{custom, completed} {
		stored, err := refresher.RefreshGoal(context.Background(), goal)
		require.NoError(t, err)
		assert.False(t, stored)
	}
	assert.Empty(t, repo.progressUpdates)
	assert.Empty(t, repo.updated)
}

func TestRefreshUserGoals_FailureIsolation(t *testing.T) {
	weight := &Goal{
		ID: "g-weight", UserID: "user1", Type: TypeWeight, Status: StatusActive,
		StartValue: float64Ptr(90), Target: Target{Weight: float64Ptr(80)},
	}
	strength := &Goal{
		ID: "g-strength", UserID: "user1", Type: TypeStrength, Status: StatusActive,
		Target: Target{Strength: &StrengthTarget{ExerciseID: "squat", Kilos: 140, Reps: 5}},
	}
	repo := newGoalsRepoMock(weight, strength)
	refresher := newTestRefresher(repo,
		&metricsSourceMock{metrics: map[string][]bodymetrics.BodyMetric{
			"user1": {{UserID: "user1", WeightKilos: float64Ptr(85)}},
		}},
		&recordsSourceMock{err: errors.New("records db down")},
		nil,
	)

	// the records source failing must not block the weight goal refresh
	require.NoError(t, refresher.RefreshUserGoals(context.Background(), "user1"))
	_, weightUpdated := repo.progressUpdates["g-weight"]
	assert.True(t, weightUpdated)
	_, strengthUpdated := repo.progressUpdates["g-strength"]
	assert.False(t, strengthUpdated)
}
