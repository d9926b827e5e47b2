package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/pkg/logger"
	"FactorEdge/pkg/util"
)

const cycleLockKey = "lock:daily-cycle"

// DailyCycle runs track, recalibrate and publish over one history
// snapshot. Runs are serialised through lock.
type DailyCycle struct {
	history   *HistoryLoader
	tracker   *PerformanceTracker
	recal     *WeightRecalibrator
	reports   *Reports
	publisher domrepo.PredictionPublisher
	lock      domrepo.RunLock
	lockTTL   time.Duration
	metrics   domrepo.Metrics
	l         *logger.Logger

	mu    sync.RWMutex
	hooks []func()
}

func NewDailyCycle(history *HistoryLoader, tracker *PerformanceTracker, recal *WeightRecalibrator, reports *Reports,
	publisher domrepo.PredictionPublisher, lock domrepo.RunLock, lockTTL time.Duration, metrics domrepo.Metrics, l *logger.Logger) *DailyCycle {
	return &DailyCycle{
		history:   history,
		tracker:   tracker,
		recal:     recal,
		reports:   reports,
		publisher: publisher,
		lock:      lock,
		lockTTL:   lockTTL,
		metrics:   metrics,
		l:         l.With(logger.String("component", "daily_cycle")),
	}
}

func (c *DailyCycle) acquire(ctx context.Context) (func(), error) {
	ok, err := c.lock.TryLock(ctx, cycleLockKey, c.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire cycle lock: %w", err)
	}
	if !ok {
		return nil, models.ErrCycleInProgress
	}
	return func() {
		if err := c.lock.Unlock(context.WithoutCancel(ctx), cycleLockKey); err != nil {
			c.l.Warn("release cycle lock", logger.Error(err))
		}
	}, nil
}

// OnComplete registers fn to run after every successful Run or Rerun.
func (c *DailyCycle) OnComplete(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

func (c *DailyCycle) completed() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, fn := range c.hooks {
		fn()
	}
}

// Run executes the cycle as of asOf, or the latest bar when asOf is zero.
func (c *DailyCycle) Run(ctx context.Context, asOf time.Time) (*models.CycleResult, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	res := &models.CycleResult{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	l := c.l.With(logger.String("run_id", res.RunID))
	fail := func(stage string, err error) (*models.CycleResult, error) {
		c.metrics.RecordError("cycle_" + stage)
		c.metrics.RecordCycle("error", time.Since(res.StartedAt).Seconds())
		l.Error("cycle failed", logger.String("stage", stage), logger.Error(err))
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	h, err := c.history.Snapshot(ctx, asOf)
	if err != nil {
		return fail("load", err)
	}
	latest, ok := h.Latest()
	if !ok {
		return fail("load", models.ErrNoData)
	}
	res.AsOf = latest.TradeDate

	if res.Tracked, err = c.tracker.TrackHistory(ctx, h, res.AsOf); err != nil {
		return fail("track", err)
	}
	if res.Generation, err = c.recal.Recalibrate(ctx, res.AsOf); err != nil {
		return fail("recalibrate", err)
	}
	if res.NextDay, err = c.reports.NextDayFor(ctx, h); err != nil {
		return fail("score", err)
	}
	c.metrics.RecordComposite(res.NextDay)

	switch err := c.publisher.PublishPrediction(ctx, res.NextDay); {
	case err == nil:
		res.Published = true
	case errors.Is(err, models.ErrPublishingDisabled):
		l.Debug("prediction publishing disabled")
	default:
		c.metrics.RecordError("cycle_publish")
		l.Warn("next-day prediction not published", logger.Error(err))
	}

	res.CompletedAt = time.Now().UTC()
	c.metrics.RecordCycle("ok", res.CompletedAt.Sub(res.StartedAt).Seconds())
	l.Info("cycle complete",
		logger.Date("as_of", res.AsOf),
		logger.Int("tracked", res.Tracked),
		logger.String("weights_source", string(res.Generation.Source())),
		logger.Float64("next_day_composite", res.NextDay.Composite),
		logger.String("signal", res.NextDay.Signal.String()),
		logger.Bool("published", res.Published),
		logger.Duration("duration_ms", res.CompletedAt.Sub(res.StartedAt)))
	c.completed()
	return res, nil
}

// Rerun re-tracks [from, to] and recalibrates every day in it in order.
// It is how corrected or backfilled bars reach persisted predictions.
func (c *DailyCycle) Rerun(ctx context.Context, from, to time.Time) (*models.RerunResult, error) {
	rng := domrepo.Between(models.TradeDay(from), models.TradeDay(to))
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	res := &models.RerunResult{RunID: uuid.NewString(), From: rng.From, To: rng.To}
	h, err := c.history.Snapshot(ctx, rng.To)
	if err != nil {
		return nil, err
	}
	if res.Tracked, err = c.tracker.TrackRange(ctx, h, rng); err != nil {
		return nil, err
	}
	err = util.EachDay(rng.From, rng.To, func(d time.Time) error {
		if _, ok := h.IndexOf(d); !ok {
			return nil
		}
		gen, err := c.recal.Recalibrate(ctx, d)
		if err != nil {
			return err
		}
		res.Generations = append(res.Generations, gen)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recalibrate range: %w", err)
	}
	c.l.Info("range re-run complete",
		logger.String("run_id", res.RunID),
		logger.Date("from", rng.From),
		logger.Date("to", rng.To),
		logger.Int("tracked", res.Tracked),
		logger.Int("generations", len(res.Generations)))
	c.completed()
	return res, nil
}
