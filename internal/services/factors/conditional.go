// Package factors implements the four P(up) estimators. Every statistical
// factor is a conditional up-rate over rows dated strictly before the
// row being estimated.
package factors

import (
	"FactorEdge/internal/domain/models"
)

type tally struct {
	up    int
	total int
}

func (t tally) probability() models.FactorProbability {
	if t.total == 0 {
		return models.Neutral()
	}
	return models.FactorProbability{
		Value:   float64(t.up) / float64(t.total),
		Samples: t.total,
		Defined: true,
	}
}

func (t *tally) add(r models.FeatureRow) {
	t.total++
	if r.IsUp {
		t.up++
	}
}

// ConditionalUpRate returns, for each row, the up-rate among earlier rows
// sharing the row's key. It makes one pass, reading each row's outcome
// only after that row's estimate has been emitted.
func ConditionalUpRate[K comparable](rows []models.FeatureRow, key func(models.FeatureRow) K) []models.FactorProbability {
	counts := make(map[K]*tally)
	out := make([]models.FactorProbability, len(rows))
	for i, r := range rows {
		k := key(r)
		t, ok := counts[k]
		if !ok {
			t = &tally{}
			counts[k] = t
		}
		out[i] = t.probability()
		t.add(r)
	}
	return out
}

// UpRateBefore returns the up-rate among rows of h dated strictly before
// row that share row's key.
func UpRateBefore[K comparable](h models.History, row models.FeatureRow, key func(models.FeatureRow) K) models.FactorProbability {
	k := key(row)
	var t tally
	for _, r := range h.Before(row.TradeDate, func(r models.FeatureRow) bool { return key(r) == k }) {
		t.add(r)
	}
	return t.probability()
}
