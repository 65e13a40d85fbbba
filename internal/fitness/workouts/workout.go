package workouts

import "time"

// CompletedExercise holds the sets of one exercise inside a completed
// workout, as parallel reps / kilos arrays. Bodyweight sets carry zero kilos.
type CompletedExercise struct {
	ExerciseID   string    `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	Reps         []int     `json:"reps"`
	Kilos        []float64 `json:"kilos"`
}

type Completion struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	CompletedAt     time.Time           `json:"completedAt"`
	DurationMinutes int                 `json:"durationMinutes,omitempty"`
	Exercises       []CompletedExercise `json:"exercises"`
	CreatedAt       time.Time           `json:"createdAt"`
}
