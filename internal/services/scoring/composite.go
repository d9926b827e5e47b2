// Package scoring blends factor probabilities into a composite P(up).
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"FactorEdge/internal/domain/models"
)

// Scorer computes composites from factor probabilities and a weight generation.
type Scorer struct {
	defaults models.Weights
}

// NewScorer validates defaults, used whenever no generation applies.
func NewScorer(defaults models.Weights) (*Scorer, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default weights: %w", err)
	}
	return &Scorer{defaults: defaults}, nil
}

func (s *Scorer) Defaults() models.Weights {
	out := make(models.Weights, len(s.defaults))
	for f, w := range s.defaults {
		out[f] = w
	}
	return out
}

// Score blends probs with gen's weights, or the defaults when gen is nil.
// Undefined probabilities contribute 0.5.
func (s *Scorer) Score(date time.Time, probs map[models.Factor]models.FactorProbability, gen *models.WeightGeneration) (models.CompositePrediction, error) {
	weights := s.defaults
	out := models.CompositePrediction{TradeDate: date, WeightsSource: models.WeightSourceDefault}
	if gen != nil {
		weights = gen.Weights()
		if err := weights.Validate(); err != nil {
			return models.CompositePrediction{}, fmt.Errorf("generation %s: %w", gen.CalculationDate.Format(time.DateOnly), err)
		}
		asOf := gen.CalculationDate
		out.WeightsAsOf = &asOf
		out.WeightsSource = gen.Source()
	}

	out.Factors = make([]models.Contribution, 0, len(models.AllFactors))
	var composite float64
	for _, f := range models.AllFactors {
		p, ok := probs[f]
		if !ok {
			p = models.Neutral()
		}
		w := weights[f]
		c := models.Contribution{
			Factor:       f,
			Probability:  p.OrNeutral(),
			Defined:      p.Defined,
			Samples:      p.Samples,
			Weight:       w,
			Contribution: w * p.OrNeutral(),
		}
		composite += c.Contribution
		out.Factors = append(out.Factors, c)
	}
	out.Composite = math.Min(1, math.Max(0, composite))
	out.Signal = models.SignalFor(out.Composite)
	return out, nil
}

// Timeline answers "which generation was in force on day D" over a
// preloaded, date-ordered set of generations.
type Timeline struct {
	gens []models.WeightGeneration
}

func NewTimeline(gens []models.WeightGeneration) Timeline {
	cp := make([]models.WeightGeneration, len(gens))
	copy(cp, gens)
	sort.Slice(cp, func(i, j int) bool { return cp[i].CalculationDate.Before(cp[j].CalculationDate) })
	return Timeline{gens: cp}
}

// Before returns the latest generation calculated strictly before d.
func (t Timeline) Before(d time.Time) *models.WeightGeneration {
	i := sort.Search(len(t.gens), func(i int) bool { return !t.gens[i].CalculationDate.Before(d) })
	if i == 0 {
		return nil
	}
	g := t.gens[i-1]
	return &g
}
