package factors

import (
	"FactorEdge/internal/domain/models"
)

// Streak conditions on up_streak, the up-day count of the 3 preceding rows.
type Streak struct{}

func (Streak) Factor() models.Factor { return models.FactorStreak }

func (Streak) Estimate(h models.History) []models.FactorProbability {
	return ConditionalUpRate(h.Rows(), streakKey)
}

func (Streak) EstimateAt(h models.History, row models.FeatureRow) models.FactorProbability {
	return UpRateBefore(h, row, streakKey)
}

func streakKey(r models.FeatureRow) int { return r.UpStreak }
