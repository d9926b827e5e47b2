package service

import (
	"FactorEdge/internal/domain/models"
)

// FactorEstimator turns a feature history into P(up) estimates for one factor.
type FactorEstimator interface {
	Factor() models.Factor
	// Estimate returns one probability per row of h. The estimate for row i
	// reads only rows 0..i-1 plus the row's own observable fields.
	Estimate(h models.History) []models.FactorProbability
	// EstimateAt returns the estimate for row using only rows of h dated
	// strictly before row.TradeDate. row need not be part of h.
	EstimateAt(h models.History, row models.FeatureRow) models.FactorProbability
}
