package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FactorEdge/internal/domain/models"
	"FactorEdge/pkg/logger"
)

// Cycler is the part of DailyCycle the scheduler drives.
type Cycler interface {
	Run(ctx context.Context, asOf time.Time) (*models.CycleResult, error)
}

// CycleScheduler runs the daily cycle once at start and then every interval.
type CycleScheduler struct {
	cycle    Cycler
	interval time.Duration
	l        *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCycleScheduler(cycle Cycler, interval time.Duration, l *logger.Logger) *CycleScheduler {
	return &CycleScheduler{cycle: cycle, interval: interval, l: l.With(logger.String("component", "scheduler"))}
}

func (s *CycleScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()
		s.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.tick(ctx)
			}
		}
	}()
	s.l.Info("scheduler started", logger.Duration("interval_ms", s.interval))
}

func (s *CycleScheduler) tick(ctx context.Context) {
	_, err := s.cycle.Run(ctx, time.Time{})
	switch {
	case err == nil:
	case errors.Is(err, models.ErrCycleInProgress):
		s.l.Debug("cycle already running, skipping tick")
	case errors.Is(err, models.ErrNoData):
		s.l.Debug("no bars yet, skipping tick")
	case errors.Is(err, context.Canceled):
	default:
		s.l.Error("scheduled cycle failed", logger.Error(err))
	}
}

// Stop cancels the loop and waits for an in-flight cycle.
func (s *CycleScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
