package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/internal/testutil"
	pkgch "FactorEdge/pkg/clickhouse"
	"FactorEdge/pkg/logger"
)

func newCHStore(t *testing.T) (*CHBarStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCHBarStore(pkgch.NewFromDB(db, "factoredge"), "BTC-USDT", logger.Nop()), mock
}

func TestCHBarStoreRange(t *testing.T) {
	s, mock := newCHStore(t)
	from, to := testutil.Day(2024, 1, 1), testutil.Day(2024, 1, 31)

	rows := sqlmock.NewRows([]string{"trade_date", "open", "high", "low", "close", "volume"}).
		AddRow(testutil.Day(2024, 1, 2), "100.5", "101", "99", "100.75", "1200").
		AddRow(testutil.Day(2024, 1, 3), "100.75", "102", "100", "101.5", "900")
	mock.ExpectQuery(`SELECT trade_date, toString\(open\).*FROM factoredge.daily_bars FINAL\s+WHERE symbol = \? AND trade_date >= \? AND trade_date <= \?`).
		WithArgs("BTC-USDT", from, to).
		WillReturnRows(rows)

	bars, err := s.Range(context.Background(), domrepo.Between(from, to))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, testutil.Day(2024, 1, 2), bars[0].TradeDate)
	assert.True(t, decimal.RequireFromString("100.75").Equal(bars[0].Close))
	assert.True(t, decimal.RequireFromString("900").Equal(bars[1].Volume))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHBarStoreRangeRejectsInvertedRange(t *testing.T) {
	s, _ := newCHStore(t)
	_, err := s.Range(context.Background(), domrepo.Between(testutil.Day(2024, 2, 1), testutil.Day(2024, 1, 1)))
	assert.Error(t, err)
}

func TestCHBarStoreMaxDate(t *testing.T) {
	s, mock := newCHStore(t)
	mock.ExpectQuery(`SELECT count\(\), max\(trade_date\) FROM factoredge.daily_bars FINAL`).
		WithArgs("BTC-USDT").
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(int64(12), testutil.Day(2024, 3, 9)))

	d, ok, err := s.MaxDate(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testutil.Day(2024, 3, 9), d)

	mock.ExpectQuery(`SELECT count\(\), max\(trade_date\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(int64(0), time.Unix(0, 0).UTC()))
	_, ok, err = s.MaxDate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHBarStoreUpsert(t *testing.T) {
	s, mock := newCHStore(t)
	bars := testutil.Pattern(testutil.Day(2024, 1, 1), "ud")

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO factoredge.daily_bars \(symbol, trade_date, open, high, low, close, volume\)`)
	for range bars {
		prep.ExpectExec().
			WithArgs("BTC-USDT", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, s.Upsert(context.Background(), bars))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHBarStoreUpsertEmpty(t *testing.T) {
	s, mock := newCHStore(t)
	require.NoError(t, s.Upsert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
