package models

import "time"

// ScoredComposite pairs a composite prediction with the realized outcome.
type ScoredComposite struct {
	Prediction CompositePrediction
	IsUp       bool
}

// Correct reports whether the composite called the outcome.
func (s ScoredComposite) Correct() bool {
	return (s.Prediction.Composite >= NeutralProbability) == s.IsUp
}

// BucketAccuracy summarises the days that fell into one signal bucket.
type BucketAccuracy struct {
	Signal              Signal  `json:"signal"`
	Samples             int     `json:"samples"`
	ActualUpRate        float64 `json:"actual_up_rate"`
	DirectionalAccuracy float64 `json:"directional_accuracy"`
}

// WeeklyAccuracy summarises composite correctness over one ISO week.
type WeeklyAccuracy struct {
	Year          int       `json:"year"`
	Week          int       `json:"week"`
	WeekStart     time.Time `json:"week_start"`
	Total         int       `json:"total"`
	Correct       int       `json:"correct"`
	AccuracyRate  float64   `json:"accuracy_rate"`
	MeanPredicted float64   `json:"mean_predicted"`
	ActualUpRate  float64   `json:"actual_up_rate"`
}

// FactorPerformance is the per-factor report over the tracking window.
type FactorPerformance struct {
	Factor              Factor  `json:"factor"`
	Samples             int     `json:"samples"`
	AccuracyRate        float64 `json:"accuracy_rate"`
	DirectionalAccuracy float64 `json:"directional_accuracy"`
	MeanConfidence      float64 `json:"mean_confidence"`
	Correlation         float64 `json:"correlation"`
	WeightPct           float64 `json:"weight_pct"`
	TrailingWinRatePct  float64 `json:"trailing_win_rate_pct"`
}

// CycleResult describes one run of the daily cycle.
type CycleResult struct {
	RunID       string              `json:"run_id"`
	AsOf        time.Time           `json:"as_of"`
	Tracked     int                 `json:"tracked"`
	Generation  WeightGeneration    `json:"generation"`
	NextDay     CompositePrediction `json:"next_day"`
	Published   bool                `json:"published"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
}

// RerunResult describes an explicit re-run over a date range.
type RerunResult struct {
	RunID       string             `json:"run_id"`
	From        time.Time          `json:"from"`
	To          time.Time          `json:"to"`
	Tracked     int                `json:"tracked"`
	Generations []WeightGeneration `json:"generations"`
}
