package goals

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
	StatusExpired   Status = "expired"
)

type Type string

const (
	TypeWeight           Type = "weight"
	TypeBodyFat          Type = "body_fat"
	TypeStrength         Type = "strength"
	TypeWorkoutFrequency Type = "workout_frequency"
	TypeCustom           Type = "custom"
)

type StrengthTarget struct {
	ExerciseID string  `json:"exerciseId"`
	Kilos      float64 `json:"kilos"`
	Reps       int     `json:"reps"`
}

// FrequencyTarget - exactly one of PerWeek / PerMonth is expected to be set.
type FrequencyTarget struct {
	PerWeek  *int `json:"perWeek,omitempty"`
	PerMonth *int `json:"perMonth,omitempty"`
}

// Target is the type-dependent part of a goal; which field is set
// follows the goal Type.
type Target struct {
	Weight    *float64         `json:"weight,omitempty"`
	BodyFat   *float64         `json:"bodyFat,omitempty"`
	Strength  *StrengthTarget  `json:"strength,omitempty"`
	Frequency *FrequencyTarget `json:"frequency,omitempty"`
}

type Goal struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Type        Type   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Target Target `json:"target"`

	StartValue      *float64 `json:"startValue,omitempty"`
	CurrentValue    *float64 `json:"currentValue,omitempty"`
	CurrentProgress *float64 `json:"currentProgress,omitempty"` // 0-100, unset until first computed

	StartDate   time.Time  `json:"startDate"`
	Deadline    time.Time  `json:"deadline"`
	CompletedAt *time.Time `json:"completedAt,omitempty"` // set iff status == completed
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (g *Goal) IsTerminal() bool {
	switch g.Status {
	case StatusCompleted, StatusAbandoned, StatusExpired:
		return true
	}
	return false
}
