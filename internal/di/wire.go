//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FactorEdge/internal/domain/repository"
	"FactorEdge/internal/usecase"
	"FactorEdge/pkg/config"
	"FactorEdge/pkg/metrics"
	"FactorEdge/pkg/server"
)

var engineSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

	// Storage
	ProvideBarStore,
	ProvideCache,
	ProvideRunLock,
	ProvidePerformanceStore,
	ProvidePublisher,

	// Domain services
	ProvideDefaultWeights,
	ProvideScorer,
	ProvideEstimators,
	ProvideFallbackPolicy,

	// Use cases
	usecase.NewHistoryLoader,
	ProvideTracker,
	ProvideRecalibrator,
	ProvideReports,
	ProvideBacktest,
	ProvideDailyCycle,
	ProvideEngine,
)

// InitializeEngine wires the engine for one-shot CLI commands.
func InitializeEngine(cfg *config.Config) (*Engine, func(), error) {
	wire.Build(engineSet)
	return nil, nil, nil
}

// InitializeApp wires the long-running server.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		engineSet,
		ProvideScheduler,
		ProvideKafkaConsumer,
		ProvideBarsHandler,
		ProvideReportsHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
