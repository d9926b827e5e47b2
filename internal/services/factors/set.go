package factors

import (
	"time"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/domain/service"
)

// Default returns the four estimators in reporting order.
func Default() []service.FactorEstimator {
	return []service.FactorEstimator{Calendar{}, Streak{}, Volume{}, Technical{}}
}

// Panel holds every factor's estimate for every row of a history.
type Panel struct {
	history models.History
	probs   map[models.Factor][]models.FactorProbability
}

// Evaluate runs each estimator over h.
func Evaluate(h models.History, estimators []service.FactorEstimator) Panel {
	p := Panel{history: h, probs: make(map[models.Factor][]models.FactorProbability, len(estimators))}
	for _, e := range estimators {
		p.probs[e.Factor()] = e.Estimate(h)
	}
	return p
}

func (p Panel) History() models.History { return p.history }

// Day returns every factor's estimate for row i.
func (p Panel) Day(i int) map[models.Factor]models.FactorProbability {
	out := make(map[models.Factor]models.FactorProbability, len(p.probs))
	for f, probs := range p.probs {
		out[f] = probs[i]
	}
	return out
}

// On returns every factor's estimate for the row dated d.
func (p Panel) On(d time.Time) (map[models.Factor]models.FactorProbability, bool) {
	i, ok := p.history.IndexOf(d)
	if !ok {
		return nil, false
	}
	return p.Day(i), true
}

// EstimateRow evaluates every estimator for a single row, which may lie
// beyond the end of h.
func EstimateRow(h models.History, row models.FeatureRow, estimators []service.FactorEstimator) map[models.Factor]models.FactorProbability {
	out := make(map[models.Factor]models.FactorProbability, len(estimators))
	for _, e := range estimators {
		out[e.Factor()] = e.EstimateAt(h, row)
	}
	return out
}
