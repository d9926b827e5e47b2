package factors

import (
	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/services/features"
)

// Volume conditions on the bucketed daily volume change.
type Volume struct{}

func (Volume) Factor() models.Factor { return models.FactorVolume }

func (Volume) Estimate(h models.History) []models.FactorProbability {
	return ConditionalUpRate(h.Rows(), features.RowVolumeCategory)
}

func (Volume) EstimateAt(h models.History, row models.FeatureRow) models.FactorProbability {
	return UpRateBefore(h, row, features.RowVolumeCategory)
}
