package models

import (
	"fmt"
	"math"
	"time"
)

// Factor names one of the four fixed predictive factors.
type Factor string

const (
	FactorCalendar  Factor = "calendar"
	FactorStreak    Factor = "streak"
	FactorVolume    Factor = "volume"
	FactorTechnical Factor = "technical"
)

// AllFactors lists the factors in their fixed reporting order.
var AllFactors = []Factor{FactorCalendar, FactorStreak, FactorVolume, FactorTechnical}

// NeutralProbability is substituted wherever a factor has no information.
const NeutralProbability = 0.5

func (f Factor) Valid() bool {
	switch f {
	case FactorCalendar, FactorStreak, FactorVolume, FactorTechnical:
		return true
	}
	return false
}

func (f Factor) String() string { return string(f) }

// ParseFactor validates a factor name.
func ParseFactor(s string) (Factor, error) {
	f := Factor(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown factor %q", s)
	}
	return f, nil
}

// FactorProbability is a factor's P(up) estimate for one day.
// Samples counts the historical precedents behind the estimate; a
// statistical factor with zero samples is undefined.
type FactorProbability struct {
	Value   float64 `json:"value"`
	Samples int     `json:"samples"`
	Defined bool    `json:"defined"`
}

// Neutral is the undefined probability.
func Neutral() FactorProbability {
	return FactorProbability{Value: NeutralProbability}
}

// OrNeutral returns the value, or 0.5 when undefined.
func (p FactorProbability) OrNeutral() float64 {
	if !p.Defined {
		return NeutralProbability
	}
	return p.Value
}

// FactorPrediction is the persisted record of one factor's estimate
// for one trade date, scored against the realized outcome.
type FactorPrediction struct {
	TradeDate    time.Time `json:"trade_date"`
	Factor       Factor    `json:"factor"`
	Prediction   float64   `json:"prediction"`
	ActualResult int       `json:"actual_result"`
	IsCorrect    bool      `json:"is_correct"`
	Samples      int       `json:"samples"`
}

// IsCorrectCall reports whether p called the outcome: p >= 0.5 calls up.
func IsCorrectCall(p float64, actual int) bool {
	return (p >= NeutralProbability && actual == 1) || (p < NeutralProbability && actual == 0)
}

// NewFactorPrediction builds a scored prediction, substituting 0.5 for undefined.
func NewFactorPrediction(date time.Time, f Factor, p FactorProbability, actual int) FactorPrediction {
	v := p.OrNeutral()
	return FactorPrediction{
		TradeDate:    date,
		Factor:       f,
		Prediction:   v,
		ActualResult: actual,
		IsCorrect:    IsCorrectCall(v, actual),
		Samples:      p.Samples,
	}
}

// WeightSource records how a weight generation was produced.
type WeightSource string

const (
	WeightSourceCalibrated     WeightSource = "calibrated"
	WeightSourceCarriedForward WeightSource = "carried_forward"
	WeightSourceUniform        WeightSource = "uniform"
	WeightSourceDefault        WeightSource = "default"
)

// FactorWeight is one factor's row in a weight generation.
type FactorWeight struct {
	CalculationDate time.Time    `json:"calculation_date"`
	Factor          Factor       `json:"factor"`
	Weight          float64      `json:"weight"`
	WinRate         float64      `json:"win_rate"`
	Samples         int          `json:"samples"`
	Source          WeightSource `json:"source"`
}

// Weights maps every factor to its weight.
type Weights map[Factor]float64

// DefaultWeights are used when no generation has been persisted.
func DefaultWeights() Weights {
	return Weights{
		FactorCalendar:  0.2,
		FactorStreak:    0.3,
		FactorVolume:    0.2,
		FactorTechnical: 0.3,
	}
}

const weightSumTolerance = 1e-9

func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Validate checks that all four factors are present, non-negative and sum to 1.
func (w Weights) Validate() error {
	if len(w) != len(AllFactors) {
		return fmt.Errorf("%w: expected %d factors, got %d", ErrInvalidWeights, len(AllFactors), len(w))
	}
	for _, f := range AllFactors {
		v, ok := w[f]
		if !ok {
			return fmt.Errorf("%w: missing factor %s", ErrInvalidWeights, f)
		}
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: factor %s weight %v", ErrInvalidWeights, f, v)
		}
	}
	if math.Abs(w.Sum()-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, w.Sum())
	}
	return nil
}

// WeightGeneration is the set of four weights computed on one calculation date.
type WeightGeneration struct {
	CalculationDate time.Time      `json:"calculation_date"`
	Rows            []FactorWeight `json:"rows"`
}

func (g WeightGeneration) Weights() Weights {
	w := make(Weights, len(g.Rows))
	for _, r := range g.Rows {
		w[r.Factor] = r.Weight
	}
	return w
}

// Source returns the source shared by the generation's rows.
func (g WeightGeneration) Source() WeightSource {
	if len(g.Rows) == 0 {
		return WeightSourceDefault
	}
	return g.Rows[0].Source
}

// Row returns the weight row for f.
func (g WeightGeneration) Row(f Factor) (FactorWeight, bool) {
	for _, r := range g.Rows {
		if r.Factor == f {
			return r, true
		}
	}
	return FactorWeight{}, false
}
