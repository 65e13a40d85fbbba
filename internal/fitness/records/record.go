package records

import "time"

// PersonalRecord is the single best set a user ever logged for an exercise.
// One row per (user, exercise).
type PersonalRecord struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	ExerciseID         string    `json:"exerciseId"`
	ExerciseName       string    `json:"exerciseName"`
	Kilos              float64   `json:"kilos"`
	Reps               int       `json:"reps"`
	AchievedAt         time.Time `json:"achievedAt"`
	SourceCompletionID string    `json:"sourceCompletionId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Candidate is a potential new record derived from a workout completion.
type Candidate struct {
	ExerciseID         string
	ExerciseName       string
	Kilos              float64
	Reps               int
	AchievedAt         time.Time
	SourceCompletionID string
}

// Supersedes - heavier weight always wins; on equal weight more reps win.
func (c Candidate) Supersedes(existing *PersonalRecord) bool {
	if existing == nil {
		return true
	}
	if c.Kilos != existing.Kilos {
		return c.Kilos > existing.Kilos
	}
	return c.Reps > existing.Reps
}

// BestSet picks the record candidate set out of the parallel reps / kilos
// arrays of one exercise: the heaviest set, and on equal weight the first
// occurrence. Sets with non-positive weight or reps never qualify.
func BestSet(kilos []float64, reps []int) (bestKilos float64, bestReps int, ok bool) {
	n := len(kilos)
	if len(reps) < n {
		n = len(reps)
	}

	for i := 0; i < n; i++ {
		if kilos[i] <= 0 || reps[i] <= 0 {
			continue
		}
		if !ok || kilos[i] > bestKilos {
			bestKilos, bestReps, ok = kilos[i], reps[i], true
		}
	}

	return bestKilos, bestReps, ok
}
