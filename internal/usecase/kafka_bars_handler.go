package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/pkg/logger"
)

// barMessage is the closed-bar event: {symbol, trade_date, open, high, low, close, volume}.
// Prices may be JSON strings or numbers.
type barMessage struct {
	Symbol    string          `json:"symbol"`
	TradeDate string          `json:"trade_date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// KafkaBarsHandler persists closed bars and runs the cycle when a bar is
// on or after the latest stored date. Older bars are stored only.
type KafkaBarsHandler struct {
	topic   string
	symbol  string
	bars    domrepo.PriceHistoryStore
	cycle   Cycler
	metrics domrepo.Metrics
	l       *logger.Logger
}

func NewKafkaBarsHandler(topic, symbol string, bars domrepo.PriceHistoryStore, cycle Cycler, metrics domrepo.Metrics, l *logger.Logger) *KafkaBarsHandler {
	return &KafkaBarsHandler{
		topic:   topic,
		symbol:  symbol,
		bars:    bars,
		cycle:   cycle,
		metrics: metrics,
		l:       l.With(logger.String("component", "bars_handler"), logger.String("topic", topic)),
	}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var m barMessage
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode bar: %w", err)
	}
	if m.Symbol != "" && m.Symbol != h.symbol {
		h.l.Debug("bar for other symbol ignored", logger.String("symbol", m.Symbol))
		return nil
	}
	day, err := time.Parse(time.DateOnly, m.TradeDate)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode trade_date %q: %w", m.TradeDate, err)
	}
	if !m.Open.IsPositive() || !m.Close.IsPositive() {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("%w: %s", models.ErrNonPositivePrice, m.TradeDate)
	}
	bar := models.DailyBar{
		TradeDate: models.TradeDay(day),
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		Volume:    m.Volume,
	}

	prevMax, hasPrev, err := h.bars.MaxDate(ctx)
	if err != nil {
		return fmt.Errorf("max trade date: %w", err)
	}
	start := time.Now()
	if err := h.bars.Upsert(ctx, []models.DailyBar{bar}); err != nil {
		h.metrics.RecordError("consumer_store")
		return fmt.Errorf("store bar: %w", err)
	}
	h.metrics.RecordLatency("bar_upsert", time.Since(start).Seconds())
	h.metrics.RecordBarsIngested(1)

	if hasPrev && bar.TradeDate.Before(prevMax) {
		h.l.Warn("backfilled bar stored; re-run the range to refresh predictions",
			logger.Date("trade_date", bar.TradeDate),
			logger.Date("latest", prevMax))
		return nil
	}

	if _, err := h.cycle.Run(ctx, bar.TradeDate); err != nil {
		if errors.Is(err, models.ErrCycleInProgress) {
			h.l.Warn("cycle in progress, bar will be picked up by the next run", logger.Date("trade_date", bar.TradeDate))
			return nil
		}
		return fmt.Errorf("run cycle for %s: %w", m.TradeDate, err)
	}
	return nil
}
