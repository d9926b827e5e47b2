package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FactorEdge/pkg/config"
	xhttp "FactorEdge/pkg/http"
	pkgkafka "FactorEdge/pkg/kafka"
	"FactorEdge/pkg/logger"
)

// Scheduler runs work periodically until stopped.
type Scheduler interface {
	Start(ctx context.Context)
	Stop()
}

// App encapsulates the serving lifecycle: HTTP API, optional scheduler and
// optional bar consumer.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *xhttp.Server
	scheduler  Scheduler
	consumer   *pkgkafka.Consumer
	bars       pkgkafka.MessageHandler
}

// New creates an App. scheduler, consumer and bars may be nil.
func New(cfg *config.Config, l *logger.Logger, httpServer *xhttp.Server, scheduler Scheduler,
	consumer *pkgkafka.Consumer, bars pkgkafka.MessageHandler) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: httpServer,
		scheduler:  scheduler,
		consumer:   consumer,
		bars:       bars,
	}
}

// Run starts every component and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.consumer != nil && a.bars != nil {
		a.consumer.RegisterHandler(a.bars)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", logger.Error(err))
			return err
		}
		a.log.Info("bar consumer started", logger.String("topic", a.bars.Topic()),
			logger.Strings("brokers", a.cfg.Kafka.Brokers))
	}

	if a.scheduler != nil {
		a.scheduler.Start(ctx)
		a.log.Info("cycle scheduler started", logger.Duration("interval", a.cfg.Scheduler.Interval))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", logger.Error(err))
		a.stopBackground(ctx)
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) stopBackground(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.consumer != nil && a.bars != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", logger.Error(err))
		}
	}
}

// shutdown stops the scheduler, the HTTP server and the consumer in that
// order. Stores and clients are closed by the injector cleanup.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}

	if a.consumer != nil && a.bars != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
