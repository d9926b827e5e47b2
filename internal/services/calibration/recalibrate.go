// Package calibration maps trailing factor win-rates to weights.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"time"

	"FactorEdge/internal/domain/models"
)

const (
	// DefaultSteepness is the slope of the win-rate sigmoid.
	DefaultSteepness = 10.0
	// DefaultWindow is how many recent trade dates feed a generation.
	DefaultWindow = 30
)

// ErrInsufficientData is returned when some factor has no observations.
var ErrInsufficientData = errors.New("factor has no observations in window")

// WinRate tallies correct calls over a window.
type WinRate struct {
	Correct int
	Total   int
}

func (w WinRate) Rate() float64 {
	if w.Total == 0 {
		return models.NeutralProbability
	}
	return float64(w.Correct) / float64(w.Total)
}

// Tally counts correct calls per factor.
func Tally(preds []models.FactorPrediction) map[models.Factor]WinRate {
	out := make(map[models.Factor]WinRate, len(models.AllFactors))
	for _, p := range preds {
		w := out[p.Factor]
		w.Total++
		if p.IsCorrect {
			w.Correct++
		}
		out[p.Factor] = w
	}
	return out
}

// RawWeight is sigmoid(steepness * (winRate - 0.5)).
func RawWeight(winRate, steepness float64) float64 {
	return 1 / (1 + math.Exp(-steepness*(winRate-models.NeutralProbability)))
}

// Calibrate normalises the raw weights of every factor to sum to 1.
func Calibrate(date time.Time, rates map[models.Factor]WinRate, steepness float64) (models.WeightGeneration, error) {
	raw := make(map[models.Factor]float64, len(models.AllFactors))
	var total float64
	for _, f := range models.AllFactors {
		wr, ok := rates[f]
		if !ok || wr.Total == 0 {
			return models.WeightGeneration{}, ErrInsufficientData
		}
		raw[f] = RawWeight(wr.Rate(), steepness)
		total += raw[f]
	}
	gen := models.WeightGeneration{CalculationDate: date}
	for _, f := range models.AllFactors {
		gen.Rows = append(gen.Rows, models.FactorWeight{
			CalculationDate: date,
			Factor:          f,
			Weight:          raw[f] / total,
			WinRate:         rates[f].Rate(),
			Samples:         rates[f].Total,
			Source:          models.WeightSourceCalibrated,
		})
	}
	return gen, nil
}

// Uniform assigns 0.25 to each factor with a neutral win-rate.
func Uniform(date time.Time, rates map[models.Factor]WinRate) models.WeightGeneration {
	gen := models.WeightGeneration{CalculationDate: date}
	w := 1 / float64(len(models.AllFactors))
	for _, f := range models.AllFactors {
		gen.Rows = append(gen.Rows, models.FactorWeight{
			CalculationDate: date,
			Factor:          f,
			Weight:          w,
			WinRate:         models.NeutralProbability,
			Samples:         rates[f].Total,
			Source:          models.WeightSourceUniform,
		})
	}
	return gen
}

// CarryForward re-dates prev to date.
func CarryForward(prev models.WeightGeneration, date time.Time) models.WeightGeneration {
	gen := models.WeightGeneration{CalculationDate: date}
	for _, f := range models.AllFactors {
		r, _ := prev.Row(f)
		r.CalculationDate = date
		r.Factor = f
		r.Source = models.WeightSourceCarriedForward
		gen.Rows = append(gen.Rows, r)
	}
	return gen
}

// FallbackPolicy decides the generation persisted when Calibrate reports
// insufficient data.
type FallbackPolicy string

const (
	FallbackCarryForward FallbackPolicy = "carry_forward"
	FallbackUniform      FallbackPolicy = "uniform"
)

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case FallbackCarryForward, FallbackUniform:
		return p, nil
	}
	return "", fmt.Errorf("unknown fallback policy %q", s)
}

// Fallback applies the policy. prev is the latest generation before date,
// nil when none exists; without one every policy degrades to Uniform.
func (p FallbackPolicy) Fallback(date time.Time, rates map[models.Factor]WinRate, prev *models.WeightGeneration) models.WeightGeneration {
	if p == FallbackCarryForward && prev != nil && len(prev.Rows) > 0 {
		return CarryForward(*prev, date)
	}
	return Uniform(date, rates)
}
