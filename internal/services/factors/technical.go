package factors

import (
	"FactorEdge/internal/domain/models"
)

// Technical reads moving-average alignment on the row itself:
// close > ma5 > ma20 is bullish, close < ma5 < ma20 bearish.
type Technical struct{}

func (Technical) Factor() models.Factor { return models.FactorTechnical }

func (Technical) Estimate(h models.History) []models.FactorProbability {
	out := make([]models.FactorProbability, h.Len())
	for i := 0; i < h.Len(); i++ {
		out[i] = alignment(h.At(i))
	}
	return out
}

func (Technical) EstimateAt(_ models.History, row models.FeatureRow) models.FactorProbability {
	return alignment(row)
}

func alignment(r models.FeatureRow) models.FactorProbability {
	v := models.NeutralProbability
	switch {
	case r.Close > r.MA5 && r.MA5 > r.MA20:
		v = 1
	case r.Close < r.MA5 && r.MA5 < r.MA20:
		v = 0
	}
	return models.FactorProbability{Value: v, Defined: true}
}
