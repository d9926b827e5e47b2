package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/domain/repository"
	"FactorEdge/internal/domain/service"
	"FactorEdge/internal/handler/api"
	internalrepo "FactorEdge/internal/repository"
	svcmetrics "FactorEdge/internal/service/metrics"
	"FactorEdge/internal/service/ratelimit"
	"FactorEdge/internal/services/calibration"
	"FactorEdge/internal/services/factors"
	"FactorEdge/internal/services/scoring"
	"FactorEdge/internal/usecase"
	"FactorEdge/pkg/cache"
	pkgch "FactorEdge/pkg/clickhouse"
	"FactorEdge/pkg/config"
	xhttp "FactorEdge/pkg/http"
	pkgkafka "FactorEdge/pkg/kafka"
	"FactorEdge/pkg/logger"
	"FactorEdge/pkg/metrics"
	pkgpg "FactorEdge/pkg/postgres"
	"FactorEdge/pkg/server"
)

const (
	initTimeout    = 10 * time.Second
	reportCacheTTL = 30 * time.Second
)

// ProvideLogger builds the application logger from cfg.Log.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideClickHouseClient connects to ClickHouse and makes sure the database exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideBarStore selects the bar history backend.
func ProvideBarStore(cfg *config.Config, l *logger.Logger) (repository.PriceHistoryStore, func(), error) {
	if cfg.Storage.Prices == "memory" {
		l.Warn("using in-memory bar store; history starts empty")
		return internalrepo.NewMemoryBarStore(), func() {}, nil
	}
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := internalrepo.NewCHBarStore(client, cfg.Engine.Symbol, l)
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", logger.Error(err))
		}
	}, nil
}

// ProvideCache returns Redis when enabled, otherwise an in-process cache.
// It also backs the cycle run lock.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.Service, func(), error) {
	var c cache.Service
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, err
		}
		c = rc
	} else {
		c = cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
			cache.WithMemoryCleanup(cfg.Cache.MemoryCleanup),
		)
	}
	return c, func() {
		if err := c.Close(); err != nil {
			l.Warn("cache close error", logger.Error(err))
		}
	}, nil
}

// ProvideRunLock exposes the cache lock primitives.
func ProvideRunLock(c cache.Service) repository.RunLock {
	return c
}

// ProvidePerformanceStore selects the prediction and weight backend and
// puts the weight cache in front of it when Redis is enabled.
func ProvidePerformanceStore(cfg *config.Config, c cache.Service, l *logger.Logger) (repository.PerformanceStore, func(), error) {
	var store repository.PerformanceStore
	if cfg.Storage.Performance == "memory" {
		store = internalrepo.NewMemoryPerformanceStore()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		pg, err := pkgpg.Open(ctx, pkgpg.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			Database:        cfg.Postgres.Database,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		store = internalrepo.NewPGPerformanceStore(pg, l)
		if err := store.Init(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}
	if cfg.Redis.Enabled {
		store = internalrepo.NewCachedPerformanceStore(store, c, cfg.Redis.WeightTTL, l)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			l.Warn("performance store close error", logger.Error(err))
		}
	}, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher publishes next-day predictions to Kafka when enabled.
func ProvidePublisher(cfg *config.Config, l *logger.Logger) (repository.PredictionPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopPublisher{}, func() {}, nil
	}
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	pub := internalrepo.NewKafkaPredictionPublisher(producer, cfg.Kafka.Producer.Topic,
		cfg.Kafka.Breaker.MaxFailures, cfg.Kafka.Breaker.OpenTimeout, l)
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", logger.Error(err))
		}
	}, nil
}

// ProvideKafkaConsumer creates the bar consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideDefaultWeights reads engine.default_weights, falling back to the built-in set.
func ProvideDefaultWeights(cfg *config.Config) (models.Weights, error) {
	if len(cfg.Engine.DefaultWeights) == 0 {
		return models.DefaultWeights(), nil
	}
	w := make(models.Weights, len(cfg.Engine.DefaultWeights))
	for name, v := range cfg.Engine.DefaultWeights {
		f, err := models.ParseFactor(name)
		if err != nil {
			return nil, err
		}
		w[f] = v
	}
	return w, nil
}

func ProvideScorer(w models.Weights) (*scoring.Scorer, error) {
	return scoring.NewScorer(w)
}

func ProvideEstimators() []service.FactorEstimator {
	return factors.Default()
}

func ProvideFallbackPolicy(cfg *config.Config) (calibration.FallbackPolicy, error) {
	return calibration.ParseFallbackPolicy(cfg.Engine.FallbackPolicy)
}

func ProvideTracker(h *usecase.HistoryLoader, store repository.PerformanceStore, est []service.FactorEstimator, m repository.Metrics, cfg *config.Config, l *logger.Logger) *usecase.PerformanceTracker {
	return usecase.NewPerformanceTracker(h, store, est, cfg.Engine.TrackingWindow, m, l)
}

func ProvideRecalibrator(store repository.PerformanceStore, policy calibration.FallbackPolicy, m repository.Metrics, cfg *config.Config, l *logger.Logger) *usecase.WeightRecalibrator {
	return usecase.NewWeightRecalibrator(store, cfg.Engine.RecalibrationWindow, cfg.Engine.Steepness, policy, m, l)
}

func ProvideReports(h *usecase.HistoryLoader, store repository.PerformanceStore, scorer *scoring.Scorer, est []service.FactorEstimator, cfg *config.Config) *usecase.Reports {
	return usecase.NewReports(h, store, scorer, est, cfg.Engine.TrackingWindow, cfg.Engine.RecalibrationWindow)
}

func ProvideBacktest(h *usecase.HistoryLoader, store repository.PerformanceStore, scorer *scoring.Scorer, est []service.FactorEstimator, l *logger.Logger) *usecase.BacktestEvaluator {
	return usecase.NewBacktestEvaluator(h, store, scorer, est, l)
}

func ProvideDailyCycle(h *usecase.HistoryLoader, t *usecase.PerformanceTracker, r *usecase.WeightRecalibrator, rep *usecase.Reports,
	pub repository.PredictionPublisher, lock repository.RunLock, m repository.Metrics, cfg *config.Config, l *logger.Logger) *usecase.DailyCycle {
	return usecase.NewDailyCycle(h, t, r, rep, pub, lock, cfg.Engine.LockTTL, m, l)
}

// ProvideBarsHandler handles closed bars from the bars topic.
func ProvideBarsHandler(cfg *config.Config, bars repository.PriceHistoryStore, cycle *usecase.DailyCycle, m repository.Metrics, l *logger.Logger) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.Consumer.Topic, cfg.Engine.Symbol, bars, cycle, m, l)
}

func ProvideScheduler(cfg *config.Config, cycle *usecase.DailyCycle, l *logger.Logger) *usecase.CycleScheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	return usecase.NewCycleScheduler(cycle, cfg.Scheduler.Interval, l)
}

func ProvideReportsHandler(cfg *config.Config, reports *usecase.Reports, backtest *usecase.BacktestEvaluator, cycle *usecase.DailyCycle, l *logger.Logger) *api.ReportsEchoHandler {
	h := api.NewReportsEchoHandler(l, reports, backtest, cycle,
		ratelimit.New(cfg.RateLimit.CycleRPS, cfg.RateLimit.CycleBurst),
		svcmetrics.NewReportMetrics(prometheus.DefaultRegisterer),
		reportCacheTTL,
		api.ReportDefaults{Window: cfg.Engine.TrackingWindow, WeeklyDays: cfg.Engine.ReportDays})
	// Scheduled and Kafka-triggered cycles must also drop cached reports.
	cycle.OnComplete(h.Invalidate)
	return h
}

func ProvideHTTPServer(cfg *config.Config, h *api.ReportsEchoHandler, l *logger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideEngine groups the use cases the CLI commands drive.
func ProvideEngine(cfg *config.Config, l *logger.Logger, bars repository.PriceHistoryStore, store repository.PerformanceStore,
	reports *usecase.Reports, backtest *usecase.BacktestEvaluator, cycle *usecase.DailyCycle) *Engine {
	return &Engine{Config: cfg, Logger: l, Bars: bars, Performance: store, Reports: reports, Backtest: backtest, Cycle: cycle}
}

func ProvideApp(cfg *config.Config, l *logger.Logger, httpServer *xhttp.Server, scheduler *usecase.CycleScheduler,
	consumer *pkgkafka.Consumer, bars *usecase.KafkaBarsHandler) *server.App {
	var handler pkgkafka.MessageHandler
	if consumer != nil {
		handler = bars
	}
	var sched server.Scheduler
	if scheduler != nil {
		sched = scheduler
	}
	return server.New(cfg, l, httpServer, sched, consumer, handler)
}

// Engine is the wired engine without any long-running surface.
type Engine struct {
	Config      *config.Config
	Logger      *logger.Logger
	Bars        repository.PriceHistoryStore
	Performance repository.PerformanceStore
	Reports     *usecase.Reports
	Backtest    *usecase.BacktestEvaluator
	Cycle       *usecase.DailyCycle
}
