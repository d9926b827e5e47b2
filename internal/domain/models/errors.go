package models

import "errors"

var (
	// ErrNoData is returned when a report is requested over an empty history.
	ErrNoData = errors.New("no price history")
	// ErrUnorderedBars is returned when bar dates are not strictly increasing.
	ErrUnorderedBars = errors.New("bars are not strictly ordered by date")
	// ErrNonPositivePrice is returned for a bar with open or close <= 0.
	ErrNonPositivePrice = errors.New("bar has non-positive open or close")
	// ErrInvalidWeights is returned when a weight vector is malformed.
	ErrInvalidWeights = errors.New("invalid factor weights")
	// ErrCycleInProgress is returned when another cycle holds the run lock.
	ErrCycleInProgress = errors.New("daily cycle already in progress")
	// ErrInvalidRange is returned when a date range is empty or inverted.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrPublishingDisabled is returned by a publisher that sends nothing.
	ErrPublishingDisabled = errors.New("prediction publishing disabled")
)
