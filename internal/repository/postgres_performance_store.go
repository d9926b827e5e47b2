package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/pkg/logger"
	pkgpg "FactorEdge/pkg/postgres"
)

const upsertBatchSize = 500

type factorPredictionRow struct {
	TradeDate    time.Time `gorm:"column:trade_date;type:date;primaryKey"`
	Factor       string    `gorm:"column:factor_name;type:varchar(16);primaryKey"`
	Prediction   float64   `gorm:"column:prediction;not null"`
	ActualResult int       `gorm:"column:actual_result;not null"`
	IsCorrect    bool      `gorm:"column:is_correct;not null"`
	Samples      int       `gorm:"column:samples;not null"`
}

func (factorPredictionRow) TableName() string { return "factor_predictions" }

type factorWeightRow struct {
	CalculationDate time.Time `gorm:"column:calculation_date;type:date;primaryKey"`
	Factor          string    `gorm:"column:factor_name;type:varchar(16);primaryKey"`
	Weight          float64   `gorm:"column:weight;not null"`
	WinRate         float64   `gorm:"column:win_rate;not null"`
	Samples         int       `gorm:"column:samples;not null"`
	Source          string    `gorm:"column:source;type:varchar(16);not null"`
}

func (factorWeightRow) TableName() string { return "factor_weights" }

// PGPerformanceStore implements PerformanceStore on PostgreSQL via gorm.
type PGPerformanceStore struct {
	db *gorm.DB
	pg *pkgpg.Client
	l  *logger.Logger
}

func NewPGPerformanceStore(pg *pkgpg.Client, l *logger.Logger) *PGPerformanceStore {
	return &PGPerformanceStore{db: pg.DB(), pg: pg, l: l.With(logger.String("store", "postgres"))}
}

// Init migrates both tables.
func (s *PGPerformanceStore) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&factorPredictionRow{}, &factorWeightRow{}); err != nil {
		return fmt.Errorf("migrate performance tables: %w", err)
	}
	return nil
}

func (s *PGPerformanceStore) UpsertPredictions(ctx context.Context, preds []models.FactorPrediction) error {
	if len(preds) == 0 {
		return nil
	}
	rows := make([]factorPredictionRow, len(preds))
	for i, p := range preds {
		rows[i] = factorPredictionRow{
			TradeDate:    models.TradeDay(p.TradeDate),
			Factor:       p.Factor.String(),
			Prediction:   p.Prediction,
			ActualResult: p.ActualResult,
			IsCorrect:    p.IsCorrect,
			Samples:      p.Samples,
		}
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trade_date"}, {Name: "factor_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"prediction", "actual_result", "is_correct", "samples"}),
		}).
		CreateInBatches(rows, upsertBatchSize).Error
	if err != nil {
		s.l.Error("upsert predictions", logger.Int("rows", len(rows)), logger.Error(err))
		return fmt.Errorf("upsert predictions: %w", err)
	}
	return nil
}

func (s *PGPerformanceStore) Predictions(ctx context.Context, r domrepo.DateRange) ([]models.FactorPrediction, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&factorPredictionRow{})
	if !r.From.IsZero() {
		q = q.Where("trade_date >= ?", r.From)
	}
	if !r.To.IsZero() {
		q = q.Where("trade_date <= ?", r.To)
	}
	var rows []factorPredictionRow
	if err := q.Order("trade_date, factor_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	out := make([]models.FactorPrediction, len(rows))
	for i, row := range rows {
		out[i] = models.FactorPrediction{
			TradeDate:    models.TradeDay(row.TradeDate),
			Factor:       models.Factor(row.Factor),
			Prediction:   row.Prediction,
			ActualResult: row.ActualResult,
			IsCorrect:    row.IsCorrect,
			Samples:      row.Samples,
		}
	}
	sortPredictions(out)
	return out, nil
}

func (s *PGPerformanceStore) PredictionDates(ctx context.Context, onOrBefore time.Time, limit int) ([]time.Time, error) {
	var dates []time.Time
	err := s.db.WithContext(ctx).
		Model(&factorPredictionRow{}).
		Distinct("trade_date").
		Where("trade_date <= ?", onOrBefore).
		Order("trade_date DESC").
		Limit(limit).
		Pluck("trade_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("query prediction dates: %w", err)
	}
	for i := range dates {
		dates[i] = models.TradeDay(dates[i])
	}
	return dates, nil
}

func (s *PGPerformanceStore) UpsertWeights(ctx context.Context, weights []models.FactorWeight) error {
	if len(weights) == 0 {
		return nil
	}
	rows := make([]factorWeightRow, len(weights))
	for i, w := range weights {
		rows[i] = factorWeightRow{
			CalculationDate: models.TradeDay(w.CalculationDate),
			Factor:          w.Factor.String(),
			Weight:          w.Weight,
			WinRate:         w.WinRate,
			Samples:         w.Samples,
			Source:          string(w.Source),
		}
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "calculation_date"}, {Name: "factor_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"weight", "win_rate", "samples", "source"}),
		}).
		Create(&rows).Error
	if err != nil {
		s.l.Error("upsert weights", logger.Error(err))
		return fmt.Errorf("upsert weights: %w", err)
	}
	return nil
}

func (s *PGPerformanceStore) LatestGeneration(ctx context.Context, onOrBefore time.Time) (*models.WeightGeneration, error) {
	var latest sql.NullTime
	err := s.db.WithContext(ctx).
		Model(&factorWeightRow{}).
		Select("MAX(calculation_date)").
		Where("calculation_date <= ?", onOrBefore).
		Scan(&latest).Error
	if err != nil {
		return nil, fmt.Errorf("latest generation date: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	gens, err := s.Generations(ctx, domrepo.Between(latest.Time, latest.Time))
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, nil
	}
	return &gens[0], nil
}

func (s *PGPerformanceStore) Generations(ctx context.Context, r domrepo.DateRange) ([]models.WeightGeneration, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&factorWeightRow{})
	if !r.From.IsZero() {
		q = q.Where("calculation_date >= ?", r.From)
	}
	if !r.To.IsZero() {
		q = q.Where("calculation_date <= ?", r.To)
	}
	var rows []factorWeightRow
	if err := q.Order("calculation_date, factor_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query weights: %w", err)
	}
	weights := make([]models.FactorWeight, len(rows))
	for i, row := range rows {
		weights[i] = models.FactorWeight{
			CalculationDate: models.TradeDay(row.CalculationDate),
			Factor:          models.Factor(row.Factor),
			Weight:          row.Weight,
			WinRate:         row.WinRate,
			Samples:         row.Samples,
			Source:          models.WeightSource(row.Source),
		}
	}
	return groupGenerations(weights), nil
}

func (s *PGPerformanceStore) Close() error {
	return s.pg.Close()
}
