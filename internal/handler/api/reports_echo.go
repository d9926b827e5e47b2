package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	models "FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/internal/service/cache"
	"FactorEdge/internal/service/metrics"
	"FactorEdge/internal/service/ratelimit"
	xhttp "FactorEdge/pkg/http"
	xlogger "FactorEdge/pkg/logger"
	"FactorEdge/pkg/util"
)

type ReportService interface {
	Latest(ctx context.Context) (models.CompositePrediction, error)
	NextDay(ctx context.Context) (models.CompositePrediction, error)
	FactorPerformance(ctx context.Context, asOf time.Time, window int) ([]models.FactorPerformance, error)
	WeightsHistory(ctx context.Context, r domrepo.DateRange) ([]models.WeightGeneration, error)
}

type BacktestService interface {
	Buckets(ctx context.Context, asOf time.Time) ([]models.BucketAccuracy, error)
	Weekly(ctx context.Context, asOf time.Time, days int) ([]models.WeeklyAccuracy, error)
}

type CycleService interface {
	Run(ctx context.Context, asOf time.Time) (*models.CycleResult, error)
	Rerun(ctx context.Context, from, to time.Time) (*models.RerunResult, error)
}

// ReportDefaults fills query parameters a request leaves out.
type ReportDefaults struct {
	Window     int
	WeeklyDays int
}

// ReportsEchoHandler serves predictions, reports and on-demand cycles.
type ReportsEchoHandler struct {
	logger   *xlogger.Logger
	reports  ReportService
	backtest BacktestService
	cycle    CycleService
	limiter  *ratelimit.Limiter
	metrics  *metrics.ReportMetrics
	buckets  *cache.TTLCache[[]models.BucketAccuracy]
	weekly   *cache.TTLCache[[]models.WeeklyAccuracy]
	defaults ReportDefaults
}

func NewReportsEchoHandler(logger *xlogger.Logger, reports ReportService, backtest BacktestService, cycle CycleService,
	limiter *ratelimit.Limiter, m *metrics.ReportMetrics, cacheTTL time.Duration, defaults ReportDefaults) *ReportsEchoHandler {
	return &ReportsEchoHandler{
		logger:   logger,
		reports:  reports,
		backtest: backtest,
		cycle:    cycle,
		limiter:  limiter,
		metrics:  m,
		buckets:  cache.NewTTLCache[[]models.BucketAccuracy](cacheTTL),
		weekly:   cache.NewTTLCache[[]models.WeeklyAccuracy](cacheTTL),
		defaults: defaults,
	}
}

func (h *ReportsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/prediction/latest", h.Latest)
	g.GET("/prediction/next", h.Next)
	g.GET("/factors/performance", h.FactorPerformance)
	g.GET("/weights/history", h.WeightsHistory)
	g.GET("/backtest/buckets", h.Buckets)
	g.GET("/backtest/weekly", h.Weekly)
	g.POST("/cycle", h.Cycle)
}

// Invalidate drops cached backtest reports. It runs after every completed cycle.
func (h *ReportsEchoHandler) Invalidate() {
	h.buckets.Purge()
	h.weekly.Purge()
}

// appError maps domain errors onto HTTP errors.
func appError(err error) error {
	switch {
	case errors.Is(err, models.ErrNoData):
		return xhttp.NotFoundError("no price history available").WithError(err)
	case errors.Is(err, models.ErrCycleInProgress):
		return xhttp.ConflictError("a cycle is already running").WithError(err)
	case errors.Is(err, models.ErrInvalidRange):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	}
	return err
}

func (h *ReportsEchoHandler) fail(c echo.Context, report string, err error) error {
	mapped := appError(err)
	var appErr *xhttp.AppError
	if !errors.As(mapped, &appErr) {
		h.logger.Error("report error", xlogger.String("report", report), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, mapped)
}

func (h *ReportsEchoHandler) observe(report string, start time.Time, err error) {
	h.metrics.Observe(report, time.Since(start).Seconds(), err)
}

func (h *ReportsEchoHandler) Latest(c echo.Context) error {
	start := time.Now()
	res, err := h.reports.Latest(c.Request().Context())
	h.observe("latest", start, err)
	if err != nil {
		return h.fail(c, "latest", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Next(c echo.Context) error {
	start := time.Now()
	res, err := h.reports.NextDay(c.Request().Context())
	h.observe("next", start, err)
	if err != nil {
		return h.fail(c, "next", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) FactorPerformance(c echo.Context) error {
	req := &models.FactorPerformanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	asOf, _ := util.ParseDate(req.AsOf)
	if req.Window == 0 {
		req.Window = h.defaults.Window
	}

	start := time.Now()
	res, err := h.reports.FactorPerformance(c.Request().Context(), asOf, req.Window)
	h.observe("factor_performance", start, err)
	if err != nil {
		return h.fail(c, "factor_performance", err)
	}
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *ReportsEchoHandler) WeightsHistory(c echo.Context) error {
	req := &models.DateRangeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, _ := util.ParseDate(req.From)
	to, _ := util.ParseDate(req.To)

	start := time.Now()
	res, err := h.reports.WeightsHistory(c.Request().Context(), domrepo.Between(from, to))
	h.observe("weights_history", start, err)
	if err != nil {
		return h.fail(c, "weights_history", err)
	}
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *ReportsEchoHandler) Buckets(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	asOf, _ := util.ParseDate(req.AsOf)
	key := req.AsOf

	if res, ok := h.buckets.Get(key); ok {
		h.metrics.CacheHit("buckets")
		return xhttp.SuccessResponse(c, res)
	}
	start := time.Now()
	res, err := h.buckets.GetOrLoad(key, func() ([]models.BucketAccuracy, error) {
		return h.backtest.Buckets(c.Request().Context(), asOf)
	})
	h.observe("buckets", start, err)
	if err != nil {
		return h.fail(c, "buckets", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Weekly(c echo.Context) error {
	req := &models.WeeklyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	asOf, _ := util.ParseDate(req.AsOf)
	if req.Days == 0 {
		req.Days = h.defaults.WeeklyDays
	}
	key := req.AsOf + ":" + strconv.Itoa(req.Days)

	if res, ok := h.weekly.Get(key); ok {
		h.metrics.CacheHit("weekly")
		return xhttp.ListResponse(c, res, int64(len(res)))
	}
	start := time.Now()
	res, err := h.weekly.GetOrLoad(key, func() ([]models.WeeklyAccuracy, error) {
		return h.backtest.Weekly(c.Request().Context(), asOf, req.Days)
	})
	h.observe("weekly", start, err)
	if err != nil {
		return h.fail(c, "weekly", err)
	}
	return xhttp.ListResponse(c, res, int64(len(res)))
}

// Cycle runs the daily cycle, or re-runs [from, to] when both are given.
func (h *ReportsEchoHandler) Cycle(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("cycle requests are rate limited"))
	}
	req := &models.CycleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, hasFrom := util.ParseDate(req.From)
	to, hasTo := util.ParseDate(req.To)
	if hasFrom != hasTo {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("from and to must be given together"))
	}

	ctx := c.Request().Context()
	start := time.Now()
	var (
		res interface{}
		err error
	)
	if hasFrom {
		res, err = h.cycle.Rerun(ctx, from, to)
	} else {
		res, err = h.cycle.Run(ctx, time.Time{})
	}
	h.observe("cycle", start, err)
	if err != nil {
		return h.fail(c, "cycle", err)
	}
	h.Invalidate()
	return xhttp.DataResponse(c, http.StatusOK, res)
}
