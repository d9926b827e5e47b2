package factors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/services/features"
	"FactorEdge/internal/testutil"
)

func streakRow(d time.Time, streak int, up bool) models.FeatureRow {
	return models.FeatureRow{TradeDate: d, UpStreak: streak, IsUp: up}
}

func TestStreakConditionalRate(t *testing.T) {
	start := testutil.Day(2024, 1, 1)
	outcomes := []bool{true, false, true, true, false, true, false}
	var rows []models.FeatureRow
	for i, up := range outcomes {
		rows = append(rows, streakRow(start.AddDate(0, 0, i), 3, up))
	}
	rows = append(rows, streakRow(start.AddDate(0, 0, len(rows)), 1, true))
	h := models.NewHistory(rows)

	target := streakRow(start.AddDate(0, 0, 30), 3, false)
	p := Streak{}.EstimateAt(h, target)
	require.True(t, p.Defined)
	assert.Equal(t, 7, p.Samples)
	assert.InDelta(t, 4.0/7.0, p.Value, 1e-12)
}

func TestUpRateBeforeExcludesSameDay(t *testing.T) {
	d := testutil.Day(2024, 1, 10)
	h := models.NewHistory([]models.FeatureRow{
		streakRow(d.AddDate(0, 0, -1), 2, true),
		streakRow(d, 2, true),
	})
	p := Streak{}.EstimateAt(h, streakRow(d, 2, true))
	assert.Equal(t, 1, p.Samples)
}

func TestCalendarUnseenTripleIsNeutral(t *testing.T) {
	h := testutil.History(features.Derive, testutil.Walk(testutil.Day(2024, 1, 1), 40, 3))
	row, ok := features.NextDay(h, testutil.Day(2024, 7, 4))
	require.True(t, ok)

	p := Calendar{}.EstimateAt(h, row)
	assert.False(t, p.Defined)
	assert.Equal(t, 0.5, p.OrNeutral())
	assert.Equal(t, models.Neutral(), p)
}

func TestTechnicalAlignment(t *testing.T) {
	tests := []struct {
		name  string
		close float64
		ma5   float64
		ma20  float64
		want  float64
	}{
		{"bullish", 3, 2, 1, 1},
		{"bearish", 1, 2, 3, 0},
		{"mixed", 2, 3, 1, 0.5},
		{"flat", 1, 1, 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Technical{}.EstimateAt(models.History{}, models.FeatureRow{Close: tt.close, MA5: tt.ma5, MA20: tt.ma20})
			assert.True(t, p.Defined)
			assert.Equal(t, tt.want, p.Value)
		})
	}
}

func TestEstimateMatchesEstimateAt(t *testing.T) {
	h := testutil.History(features.Derive, testutil.Walk(testutil.Day(2023, 1, 1), 400, 11))
	for _, e := range Default() {
		all := e.Estimate(h)
		require.Len(t, all, h.Len())
		for i := 0; i < h.Len(); i++ {
			assert.Equal(t, all[i], e.EstimateAt(h, h.At(i)), "%s row %d", e.Factor(), i)
		}
	}
}

func TestProbabilitiesInUnitRange(t *testing.T) {
	h := testutil.History(features.Derive, testutil.Walk(testutil.Day(2023, 1, 1), 300, 5))
	panel := Evaluate(h, Default())
	for i := 0; i < h.Len(); i++ {
		for f, p := range panel.Day(i) {
			v := p.OrNeutral()
			assert.True(t, v >= 0 && v <= 1, "%s row %d = %v", f, i, v)
			if !p.Defined {
				assert.Equal(t, 0, p.Samples)
			}
		}
	}
}

func TestFutureBarsDoNotChangePastEstimates(t *testing.T) {
	bars := testutil.Walk(testutil.Day(2023, 1, 1), 250, 23)
	full := testutil.History(features.Derive, bars)
	cut := 180
	prefix := testutil.History(features.Derive, bars[:cut])

	fullPanel := Evaluate(full, Default())
	prefixPanel := Evaluate(prefix, Default())
	for i := 0; i < cut; i++ {
		assert.Equal(t, prefixPanel.Day(i), fullPanel.Day(i), "row %d", i)
	}

	// Rewriting a later bar leaves earlier rows untouched.
	altered := append([]models.DailyBar(nil), bars...)
	altered[cut] = testutil.Bar(altered[cut].TradeDate, 100, 50, 1)
	alteredPanel := Evaluate(testutil.History(features.Derive, altered), Default())
	for i := 0; i < cut; i++ {
		assert.Equal(t, fullPanel.Day(i), alteredPanel.Day(i), "row %d", i)
	}
}

func TestPanelOn(t *testing.T) {
	h := testutil.History(features.Derive, testutil.Walk(testutil.Day(2024, 1, 1), 10, 2))
	panel := Evaluate(h, Default())

	probs, ok := panel.On(testutil.Day(2024, 1, 5))
	require.True(t, ok)
	assert.Len(t, probs, len(models.AllFactors))

	_, ok = panel.On(testutil.Day(2025, 1, 1))
	assert.False(t, ok)
}
