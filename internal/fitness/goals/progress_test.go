package goals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightGoal(start, target float64) Goal {
	return Goal{
		Type:       TypeWeight,
		Status:     StatusActive,
		StartValue: float64Ptr(start),
		Target:     Target{Weight: float64Ptr(target)},
	}
}

func TestComputeProgress_WeightLoss(t *testing.T) {
	goal := weightGoal(90, 80)

	update, err := ComputeProgress(goal, ProgressInput{MeasuredWeight: float64Ptr(85)})
	require.NoError(t, err)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 50, *update.CurrentProgress, 0.001)
	require.NotNil(t, update.CurrentValue)
	assert.InDelta(t, 85, *update.CurrentValue, 0.001)
	assert.False(t, update.CompletionDetected)
}

func TestComputeProgress_WeightGain(t *testing.T) {
	goal := weightGoal(60, 70)

	update, err := ComputeProgress(goal, ProgressInput{MeasuredWeight: float64Ptr(65)})
	require.NoError(t, err)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 50, *update.CurrentProgress, 0.001)
}

func TestComputeProgress_WeightMovedAwayFromTarget(t *testing.T) {
	goal := weightGoal(90, 80)

	// gained weight on a weight loss goal, clamps to 0 instead of negative
	update, err := ComputeProgress(goal, ProgressInput{MeasuredWeight: float64Ptr(95)})
	require.NoError(t, err)
	require.NotNil(t, update.CurrentProgress)
	assert.Zero(t, *update.CurrentProgress)
}

func TestComputeProgress_WeightOvershoot(t *testing.T) {
	goal := weightGoal(90, 80)

	update, err := ComputeProgress(goal, ProgressInput{MeasuredWeight: float64Ptr(75)})
	require.NoError(t, err)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 100, *update.CurrentProgress, 0.001)
	// reaching the target weight caps the progress but never completes the
	// goal, the measurement can bounce back
	assert.False(t, update.CompletionDetected)
}

func TestComputeProgress_WeightDegenerateTarget(t *testing.T) {
	// start == target, the progress fraction is undefined
	goal := weightGoal(80, 80)

	update, err := ComputeProgress(goal, ProgressInput{MeasuredWeight: float64Ptr(79)})
	require.NoError(t, err)
	assert.Nil(t, update.CurrentProgress)
	require.NotNil(t, update.CurrentValue)
	assert.InDelta(t, 79, *update.CurrentValue, 0.001)
	assert.False(t, update.CompletionDetected)
}

func TestComputeProgress_WeightNoMeasurement(t *testing.T) {
	goal := weightGoal(90, 80)

	update, err := ComputeProgress(goal, ProgressInput{})
	require.NoError(t, err)
	assert.True(t, update.Empty())
}

func TestComputeProgress_BodyFat(t *testing.T) {
	goal := Goal{
		Type:       TypeBodyFat,
		Status:     StatusActive,
		StartValue: float64Ptr(25),
		Target:     Target{BodyFat: float64Ptr(15)},
	}

	update, err := ComputeProgress(goal, ProgressInput{MeasuredBodyFat: float64Ptr(20)})
	require.NoError(t, err)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 50, *update.CurrentProgress, 0.001)
}

func strengthGoal(kilos float64, reps int) Goal {
	return Goal{
		Type:   TypeStrength,
		Status: StatusActive,
		Target: Target{Strength: &StrengthTarget{
			ExerciseID: "bench-press",
			Kilos:      kilos,
			Reps:       reps,
		}},
	}
}

func TestComputeProgress_StrengthIntermediate(t *testing.T) {
	goal := strengthGoal(225, 5)

	update, err := ComputeProgress(goal, ProgressInput{
		RecordKilos: float64Ptr(220),
		RecordReps:  intPtr(8),
	})
	require.NoError(t, err)
	require.NotNil(t, update.CurrentProgress)
	// intermediate progress looks at weight only, reps above target do not
	// complete the goal while the weight is below it
	assert.InDelta(t, 97.78, *update.CurrentProgress, 0.01)
	assert.False(t, update.CompletionDetected)
}

func TestComputeProgress_StrengthCompletionNeedsWeightAndReps(t *testing.T) {
	goal := strengthGoal(225, 5)

	update, err := ComputeProgress(goal, ProgressInput{
		RecordKilos: float64Ptr(230),
		RecordReps:  intPtr(3),
	})
	require.NoError(t, err)
	assert.False(t, update.CompletionDetected)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 100, *update.CurrentProgress, 0.001)

	update, err = ComputeProgress(goal, ProgressInput{
		RecordKilos: float64Ptr(230),
		RecordReps:  intPtr(5),
	})
	require.NoError(t, err)
	assert.True(t, update.CompletionDetected)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 100, *update.CurrentProgress, 0.001)
}

func TestComputeProgress_StrengthNoRecord(t *testing.T) {
	goal := strengthGoal(225, 5)

	update, err := ComputeProgress(goal, ProgressInput{})
	require.NoError(t, err)
	assert.True(t, update.Empty())
}

func TestComputeProgress_FrequencyWeekly(t *testing.T) {
	perWeek := 4
	goal := Goal{
		Type:   TypeWorkoutFrequency,
		Status: StatusActive,
		Target: Target{Frequency: &FrequencyTarget{PerWeek: &perWeek}},
	}

	update, err := ComputeProgress(goal, ProgressInput{WorkoutsInWindow: 3})
	require.NoError(t, err)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 75, *update.CurrentProgress, 0.001)
	require.NotNil(t, update.CurrentValue)
	assert.InDelta(t, 3, *update.CurrentValue, 0.001)
	// frequency goals are never completed automatically, the window count
	// can drop again
	assert.False(t, update.CompletionDetected)
}

func TestComputeProgress_FrequencyAtTargetStillNotCompleted(t *testing.T) {
	perMonth := 12
	goal := Goal{
		Type:   TypeWorkoutFrequency,
		Status: StatusActive,
		Target: Target{Frequency: &FrequencyTarget{PerMonth: &perMonth}},
	}

	update, err := ComputeProgress(goal, ProgressInput{WorkoutsInWindow: 15})
	require.NoError(t, err)
	require.NotNil(t, update.CurrentProgress)
	assert.InDelta(t, 100, *update.CurrentProgress, 0.001)
	assert.False(t, update.CompletionDetected)
}

func TestComputeProgress_CustomNeverComputed(t *testing.T) {
	goal := Goal{Type: TypeCustom, Status: StatusActive}

	update, err := ComputeProgress(goal, ProgressInput{MeasuredWeight: float64Ptr(80)})
	require.NoError(t, err)
	assert.True(t, update.Empty())
}

func TestComputeProgress_UnknownType(t *testing.T) {
	goal := Goal{Type: "step_count", Status: StatusActive}

	_, err := ComputeProgress(goal, ProgressInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown goal type")
}

func TestFrequencyWindow(t *testing.T) {
	perWeek := 4
	goal := Goal{
		Type:   TypeWorkoutFrequency,
		Target: Target{Frequency: &FrequencyTarget{PerWeek: &perWeek}},
	}
	days, target, err := goal.FrequencyWindow()
	require.NoError(t, err)
	assert.Equal(t, 7, days)
	assert.Equal(t, 4, target)

	perMonth := 12
	goal.Target.Frequency = &FrequencyTarget{PerMonth: &perMonth}
	days, target, err = goal.FrequencyWindow()
	require.NoError(t, err)
	assert.Equal(t, 30, days)
	assert.Equal(t, 12, target)

	goal.Target.Frequency = &FrequencyTarget{}
	_, _, err = goal.FrequencyWindow()
	assert.ErrorIs(t, err, ErrMalformedTarget)
}

func intPtr(v int) *int {
	return &v
}
