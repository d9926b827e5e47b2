package factors

import (
	"FactorEdge/internal/domain/models"
)

// Calendar conditions on the exact (month, day, weekday) triple.
type Calendar struct{}

func (Calendar) Factor() models.Factor { return models.FactorCalendar }

func (Calendar) Estimate(h models.History) []models.FactorProbability {
	return ConditionalUpRate(h.Rows(), calendarKey)
}

func (Calendar) EstimateAt(h models.History, row models.FeatureRow) models.FactorProbability {
	return UpRateBefore(h, row, calendarKey)
}

func calendarKey(r models.FeatureRow) models.CalendarKey { return r.Calendar() }
