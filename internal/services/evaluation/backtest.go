// Package evaluation aggregates scored predictions into backtest reports.
package evaluation

import (
	"math"
	"sort"
	"time"

	"FactorEdge/internal/domain/models"
)

// Buckets groups composites by signal, returning all six buckets in
// AllSignals order. Empty buckets report zero samples.
func Buckets(scored []models.ScoredComposite) []models.BucketAccuracy {
	type acc struct{ n, up, hit int }
	by := make(map[models.Signal]*acc, len(models.AllSignals))
	for _, s := range models.AllSignals {
		by[s] = &acc{}
	}
	for _, sc := range scored {
		a := by[sc.Prediction.Signal]
		a.n++
		if sc.IsUp {
			a.up++
		}
		if sc.Prediction.Signal.Bullish() == sc.IsUp {
			a.hit++
		}
	}
	out := make([]models.BucketAccuracy, 0, len(models.AllSignals))
	for _, s := range models.AllSignals {
		a := by[s]
		out = append(out, models.BucketAccuracy{
			Signal:              s,
			Samples:             a.n,
			ActualUpRate:        ratio(a.up, a.n),
			DirectionalAccuracy: ratio(a.hit, a.n),
		})
	}
	return out
}

// Weekly groups composite correctness by ISO week, oldest first.
func Weekly(scored []models.ScoredComposite) []models.WeeklyAccuracy {
	type key struct{ year, week int }
	type acc struct {
		start        time.Time
		n, hit, up   int
		sumComposite float64
	}
	by := make(map[key]*acc)
	for _, sc := range scored {
		d := sc.Prediction.TradeDate
		y, w := d.ISOWeek()
		k := key{y, w}
		a, ok := by[k]
		if !ok {
			a = &acc{start: isoWeekStart(d)}
			by[k] = a
		}
		a.n++
		a.sumComposite += sc.Prediction.Composite
		if sc.Correct() {
			a.hit++
		}
		if sc.IsUp {
			a.up++
		}
	}
	out := make([]models.WeeklyAccuracy, 0, len(by))
	for k, a := range by {
		out = append(out, models.WeeklyAccuracy{
			Year:          k.year,
			Week:          k.week,
			WeekStart:     a.start,
			Total:         a.n,
			Correct:       a.hit,
			AccuracyRate:  ratio(a.hit, a.n),
			MeanPredicted: a.sumComposite / float64(a.n),
			ActualUpRate:  ratio(a.up, a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out
}

// FactorPerformance summarises each factor's predictions. weights and
// trailing give the current weight and the trailing win-rate per factor.
func FactorPerformance(preds []models.FactorPrediction, weights models.Weights, trailing map[models.Factor]float64) []models.FactorPerformance {
	by := make(map[models.Factor][]models.FactorPrediction, len(models.AllFactors))
	for _, p := range preds {
		by[p.Factor] = append(by[p.Factor], p)
	}
	out := make([]models.FactorPerformance, 0, len(models.AllFactors))
	for _, f := range models.AllFactors {
		rows := by[f]
		fp := models.FactorPerformance{
			Factor:             f,
			Samples:            len(rows),
			WeightPct:          weights[f] * 100,
			TrailingWinRatePct: trailing[f] * 100,
		}
		var correct, directional, calls int
		var confidence float64
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for i, p := range rows {
			if p.IsCorrect {
				correct++
			}
			if p.Prediction != models.NeutralProbability {
				calls++
				if (p.Prediction > models.NeutralProbability) == (p.ActualResult == 1) {
					directional++
				}
			}
			confidence += math.Abs(p.Prediction - models.NeutralProbability)
			xs[i] = p.Prediction
			ys[i] = float64(p.ActualResult)
		}
		fp.AccuracyRate = ratio(correct, len(rows))
		fp.DirectionalAccuracy = ratio(directional, calls)
		if len(rows) > 0 {
			fp.MeanConfidence = confidence / float64(len(rows))
		}
		fp.Correlation = Pearson(xs, ys)
		out = append(out, fp)
	}
	return out
}

// Pearson returns the correlation of xs and ys, or 0 when either is constant.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func isoWeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return models.TradeDay(d).AddDate(0, 0, -offset)
}
