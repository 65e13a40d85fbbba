package goals

import (
	"errors"
	"fmt"
)

var ErrMalformedTarget = errors.New("goal target does not match goal type")

// ProgressInput carries the already-fetched data a progress computation
// needs. Which fields matter depends on the goal type; absent history is
// represented with nil / zero and yields no update.
type ProgressInput struct {
	// Latest body measurement, for weight and body fat goals.
	MeasuredWeight  *float64
	MeasuredBodyFat *float64

	// Current personal record for the strength goal's exercise.
	RecordKilos *float64
	RecordReps  *int

	// Number of workout completions inside the goal's trailing window.
	WorkoutsInWindow int
}

// ProgressUpdate is the outcome of a single progress computation. Nil fields
// mean "leave the stored value as it is".
type ProgressUpdate struct {
	CurrentValue    *float64
	CurrentProgress *float64

	// CompletionDetected is only ever set for strength goals, once the
	// record satisfies both the target weight and reps. Measurement-driven
	// and frequency goals can regress, so they are completed by their owner.
	CompletionDetected bool
}

func (u ProgressUpdate) Empty() bool {
	return u.CurrentValue == nil && u.CurrentProgress == nil && !u.CompletionDetected
}

// ComputeProgress derives the new progress state for a goal from the given
// input. It is a pure function, persisting and status transitions are the
// caller's concern. Custom goals are never computed.
func ComputeProgress(goal Goal, in ProgressInput) (ProgressUpdate, error) {
	switch goal.Type {
	case TypeWeight:
		return towardTargetProgress(goal, in.MeasuredWeight, goal.Target.Weight)
	case TypeBodyFat:
		return towardTargetProgress(goal, in.MeasuredBodyFat, goal.Target.BodyFat)
	case TypeStrength:
		return strengthProgress(goal, in)
	case TypeWorkoutFrequency:
		return frequencyProgress(goal, in)
	case TypeCustom:
		return ProgressUpdate{}, nil
	default:
		return ProgressUpdate{}, fmt.Errorf("unknown goal type: %q", goal.Type)
	}
}

// towardTargetProgress covers weight and body fat goals. The formula
//
//	(current - start) / (target - start) * 100
//
// is direction agnostic: it works for losing as well as gaining, and moving
// away from the target clamps to 0 instead of going negative.
func towardTargetProgress(goal Goal, measured, target *float64) (ProgressUpdate, error) {
	if target == nil {
		return ProgressUpdate{}, ErrMalformedTarget
	}
	if measured == nil {
		return ProgressUpdate{}, nil
	}

	update := ProgressUpdate{CurrentValue: float64Ptr(*measured)}
	if goal.StartValue == nil || *target == *goal.StartValue {
		// Degenerate target, progress stays undefined.
		return update, nil
	}

	// Reaching the target caps the progress at 100 but does not complete the
	// goal; body measurements fluctuate, so completing stays an owner action.
	progress := clampPercent((*measured - *goal.StartValue) / (*target - *goal.StartValue) * 100)
	update.CurrentProgress = &progress
	return update, nil
}

func strengthProgress(goal Goal, in ProgressInput) (ProgressUpdate, error) {
	target := goal.Target.Strength
	if target == nil {
		return ProgressUpdate{}, ErrMalformedTarget
	}
	if in.RecordKilos == nil || in.RecordReps == nil {
		// No record for the exercise yet.
		return ProgressUpdate{}, nil
	}

	update := ProgressUpdate{CurrentValue: float64Ptr(*in.RecordKilos)}

	// Completion needs both the weight and the reps of the target; the
	// intermediate percentage intentionally looks at weight only.
	if *in.RecordKilos >= target.Kilos && *in.RecordReps >= target.Reps {
		update.CurrentProgress = float64Ptr(100)
		update.CompletionDetected = true
		return update, nil
	}

	if target.Kilos <= 0 {
		return update, nil
	}

	progress := clampPercent(*in.RecordKilos / target.Kilos * 100)
	update.CurrentProgress = &progress
	return update, nil
}

func frequencyProgress(goal Goal, in ProgressInput) (ProgressUpdate, error) {
	_, targetCount, err := goal.FrequencyWindow()
	if err != nil {
		return ProgressUpdate{}, err
	}

	update := ProgressUpdate{CurrentValue: float64Ptr(float64(in.WorkoutsInWindow))}
	if targetCount <= 0 {
		return update, nil
	}

	progress := clampPercent(float64(in.WorkoutsInWindow) / float64(targetCount) * 100)
	update.CurrentProgress = &progress
	return update, nil
}

// FrequencyWindow resolves the trailing window length and the target count
// of a workout frequency goal: 7 days for a weekly target, 30 for a monthly
// one.
func (g *Goal) FrequencyWindow() (days int, targetCount int, err error) {
	target := g.Target.Frequency
	if target == nil {
		return 0, 0, ErrMalformedTarget
	}
	switch {
	case target.PerWeek != nil:
		return 7, *target.PerWeek, nil
	case target.PerMonth != nil:
		return 30, *target.PerMonth, nil
	default:
		return 0, 0, ErrMalformedTarget
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func float64Ptr(v float64) *float64 {
	return &v
}
