package models

import (
	"sort"
	"time"
)

// History is an immutable, date-ordered sequence of feature rows.
// All factor estimation reads from a History so that a row for date D
// only ever sees rows dated strictly before D.
type History struct {
	rows []FeatureRow
}

// NewHistory copies rows into a History. Rows must already be ordered by date.
func NewHistory(rows []FeatureRow) History {
	cp := make([]FeatureRow, len(rows))
	copy(cp, rows)
	return History{rows: cp}
}

func (h History) Len() int { return len(h.rows) }

func (h History) Empty() bool { return len(h.rows) == 0 }

func (h History) At(i int) FeatureRow { return h.rows[i] }

// Rows returns a copy of the underlying rows.
func (h History) Rows() []FeatureRow {
	out := make([]FeatureRow, len(h.rows))
	copy(out, h.rows)
	return out
}

// Latest returns the most recent row.
func (h History) Latest() (FeatureRow, bool) {
	if len(h.rows) == 0 {
		return FeatureRow{}, false
	}
	return h.rows[len(h.rows)-1], true
}

// Dates returns the trade dates in order.
func (h History) Dates() []time.Time {
	out := make([]time.Time, len(h.rows))
	for i, r := range h.rows {
		out[i] = r.TradeDate
	}
	return out
}

// firstOnOrAfter returns the index of the first row dated on or after d.
func (h History) firstOnOrAfter(d time.Time) int {
	return sort.Search(len(h.rows), func(i int) bool {
		return !h.rows[i].TradeDate.Before(d)
	})
}

// IndexOf returns the position of the row dated d.
func (h History) IndexOf(d time.Time) (int, bool) {
	i := h.firstOnOrAfter(d)
	if i < len(h.rows) && h.rows[i].TradeDate.Equal(d) {
		return i, true
	}
	return -1, false
}

// Before returns the rows dated strictly before d that satisfy match.
// A nil match selects every such row.
func (h History) Before(d time.Time, match func(FeatureRow) bool) []FeatureRow {
	end := h.firstOnOrAfter(d)
	out := make([]FeatureRow, 0, end)
	for _, r := range h.rows[:end] {
		if match == nil || match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Through returns a History truncated to rows dated on or before d.
func (h History) Through(d time.Time) History {
	end := h.firstOnOrAfter(d)
	if end < len(h.rows) && h.rows[end].TradeDate.Equal(d) {
		end++
	}
	return History{rows: h.rows[:end]}
}

// Tail returns the last n rows dated on or before d.
func (h History) Tail(d time.Time, n int) []FeatureRow {
	rows := h.Through(d).rows
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	out := make([]FeatureRow, len(rows))
	copy(out, rows)
	return out
}
