package bodymetrics

import "time"

// BodyMetric is a single body measurement. Either value may be absent, a
// scale entry without a body fat reading is common.
type BodyMetric struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	WeightKilos    *float64   `json:"weightKilos,omitempty"`
	BodyFatPercent *float64   `json:"bodyFatPercent,omitempty"`
	MeasuredAt     time.Time  `json:"measuredAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}
