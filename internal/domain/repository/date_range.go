package repository

import (
	"fmt"
	"time"

	"FactorEdge/internal/domain/models"
)

// DateRange is an inclusive range of trade dates. A zero From or To is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Through returns the range of everything on or before t.
func Through(t time.Time) DateRange { return DateRange{To: t} }

// Between returns the inclusive range [from, to].
func Between(from, to time.Time) DateRange { return DateRange{From: from, To: to} }

func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return fmt.Errorf("%w: %s after %s", models.ErrInvalidRange, r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
	}
	return nil
}

// Contains reports whether t lies in the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
