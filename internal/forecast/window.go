package forecast

import (
	"fmt"
	"time"
)

// Window holds the four train/test split boundaries shared by all cities.
// The required ordering is TrainStart <= TrainEnd < TestStart <= TestEnd.
type Window struct {
	TrainStart time.Time `json:"trainStart"`
	TrainEnd   time.Time `json:"trainEnd"`
	TestStart  time.Time `json:"testStart"`
	TestEnd    time.Time `json:"testEnd"`
}

// DefaultWindow returns the standard split for the historical dataset:
// train 1960-01-01..1999-12-01, test 2000-01-01..2013-12-01. Each boundary
// defaults independently.
func DefaultWindow() Window {
	return Window{
		TrainStart: time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC),
		TrainEnd:   time.Date(1999, time.December, 1, 0, 0, 0, 0, time.UTC),
		TestStart:  time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		TestEnd:    time.Date(2013, time.December, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Validate checks the boundary ordering. A malformed window would otherwise
// only surface later as an empty-series fit failure.
func (w Window) Validate() error {
	ok := !w.TrainStart.After(w.TrainEnd) &&
		w.TrainEnd.Before(w.TestStart) &&
		!w.TestStart.After(w.TestEnd)
	if !ok {
		return fmt.Errorf("%w: want trainStart <= trainEnd < testStart <= testEnd", ErrMalformedWindow)
	}
	return nil
}

// MonthsBetween counts calendar months from b to a. Both dates are truncated
// to (year, month) granularity; the day of month is deliberately ignored to
// match the monthly sampling of the dataset.
func MonthsBetween(a, b time.Time) int {
	return (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
}
