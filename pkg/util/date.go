package util

import (
	"strconv"
	"time"
)

// ParseDate parses YYYY-MM-DD, RFC3339 or unix seconds and truncates to a UTC day.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return truncateDay(t), true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return truncateDay(time.Unix(ts, 0)), true
	}
	return time.Time{}, false
}

// EachDay calls fn for every calendar day in [from, to].
func EachDay(from, to time.Time, fn func(time.Time) error) error {
	for d := truncateDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
