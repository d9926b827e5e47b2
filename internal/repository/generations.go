package repository

import (
	"sort"

	"FactorEdge/internal/domain/models"
)

// groupGenerations folds weight rows into generations ordered by date,
// each with its rows in factor reporting order.
func groupGenerations(rows []models.FactorWeight) []models.WeightGeneration {
	by := make(map[int64]*models.WeightGeneration)
	for _, r := range rows {
		k := r.CalculationDate.Unix()
		g, ok := by[k]
		if !ok {
			g = &models.WeightGeneration{CalculationDate: r.CalculationDate}
			by[k] = g
		}
		g.Rows = append(g.Rows, r)
	}
	out := make([]models.WeightGeneration, 0, len(by))
	for _, g := range by {
		sortByFactor(g.Rows)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CalculationDate.Before(out[j].CalculationDate) })
	return out
}

func factorRank(f models.Factor) int {
	for i, x := range models.AllFactors {
		if x == f {
			return i
		}
	}
	return len(models.AllFactors)
}

func sortByFactor(rows []models.FactorWeight) {
	sort.Slice(rows, func(i, j int) bool { return factorRank(rows[i].Factor) < factorRank(rows[j].Factor) })
}

func sortPredictions(rows []models.FactorPrediction) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TradeDate.Equal(rows[j].TradeDate) {
			return rows[i].TradeDate.Before(rows[j].TradeDate)
		}
		return factorRank(rows[i].Factor) < factorRank(rows[j].Factor)
	})
}
