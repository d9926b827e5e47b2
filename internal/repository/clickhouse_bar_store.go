package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	pkgch "FactorEdge/pkg/clickhouse"
	"FactorEdge/pkg/logger"
)

// CHBarStore implements PriceHistoryStore on a ReplacingMergeTree keyed
// by (symbol, trade_date), so re-ingesting a date replaces the bar.
type CHBarStore struct {
	db     *sql.DB
	table  string
	symbol string
	l      *logger.Logger
}

func NewCHBarStore(ch *pkgch.Client, symbol string, l *logger.Logger) *CHBarStore {
	return &CHBarStore{
		db:     ch.DB(),
		table:  ch.Database() + ".daily_bars",
		symbol: symbol,
		l:      l.With(logger.String("store", "clickhouse"), logger.String("symbol", symbol)),
	}
}

func (s *CHBarStore) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            symbol      LowCardinality(String),
            trade_date  Date,
            open        Decimal(38, 10),
            high        Decimal(38, 10),
            low         Decimal(38, 10),
            close       Decimal(38, 10),
            volume      Decimal(38, 10),
            ingested_at DateTime64(3) DEFAULT now64(3)
        ) ENGINE = ReplacingMergeTree(ingested_at)
        ORDER BY (symbol, trade_date)`, s.table),
	}
}

// Init creates the bars table.
func (s *CHBarStore) Init(ctx context.Context) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init daily_bars: %w", err)
		}
	}
	return nil
}

func (s *CHBarStore) Range(ctx context.Context, r domrepo.DateRange) ([]models.DailyBar, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	where := []string{"symbol = ?"}
	args := []interface{}{s.symbol}
	if !r.From.IsZero() {
		where = append(where, "trade_date >= ?")
		args = append(args, r.From)
	}
	if !r.To.IsZero() {
		where = append(where, "trade_date <= ?")
		args = append(args, r.To)
	}
	q := fmt.Sprintf(`
        SELECT trade_date, toString(open), toString(high), toString(low), toString(close), toString(volume)
        FROM %s FINAL
        WHERE %s
        ORDER BY trade_date ASC`, s.table, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse range query error", logger.Error(err))
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.DailyBar, 0, 512)
	for rows.Next() {
		var b models.DailyBar
		if err := rows.Scan(&b.TradeDate, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.l.Error("clickhouse range scan error", logger.Error(err))
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.TradeDate = models.TradeDay(b.TradeDate)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		s.l.Error("clickhouse range rows error", logger.Error(err))
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse range ok",
		logger.Int("rows", len(out)),
		logger.Duration("duration_ms", time.Since(start)))
	return out, nil
}

func (s *CHBarStore) MaxDate(ctx context.Context) (time.Time, bool, error) {
	q := fmt.Sprintf(`SELECT count(), max(trade_date) FROM %s FINAL WHERE symbol = ?`, s.table)
	var (
		n   uint64
		max time.Time
	)
	if err := s.db.QueryRowContext(ctx, q, s.symbol).Scan(&n, &max); err != nil {
		return time.Time{}, false, fmt.Errorf("max trade date: %w", err)
	}
	if n == 0 {
		return time.Time{}, false, nil
	}
	return models.TradeDay(max), true, nil
}

// Upsert writes bars in one batch.
func (s *CHBarStore) Upsert(ctx context.Context, bars []models.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (symbol, trade_date, open, high, low, close, volume)", s.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, s.symbol, models.TradeDay(b.TradeDate),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append bar %s: %w", b.TradeDate.Format(time.DateOnly), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	s.l.Info("clickhouse bars upserted", logger.Int("rows", len(bars)))
	return nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the client owns the pool.
func (s *CHBarStore) Close() error { return nil }
