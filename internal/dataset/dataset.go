package dataset

import (
	"time"
)

// Record is a single observation from the historical temperatures table.
// AverageTemperature is nil when the source row has no measurement; a
// missing value is never encoded as zero.
type Record struct {
	Date               time.Time `json:"date"`
	City               string    `json:"city,omitempty"`
	Country            string    `json:"country"`
	AverageTemperature *float64  `json:"averageTemperature"`
}

// Dataset is an ordered collection of records. Dates are expected to be
// monotonically non-decreasing within each city partition.
type Dataset []Record

// Key returns the composite "City, Country" identifier. City names collide
// across countries, so anything that needs uniqueness must key on both.
func Key(city, country string) string {
	return city + ", " + country
}

// SelectCity filters the dataset to rows whose City matches exactly,
// preserving the original row order. The result is an independent deep copy:
// mutating it does not affect the source dataset. Zero matches is not an
// error; an empty result propagates into an empty series downstream.
func SelectCity(ds Dataset, city string) Dataset {
	var out Dataset
	for _, r := range ds {
		if r.City != city {
			continue
		}
		cp := r
		if r.AverageTemperature != nil {
			v := *r.AverageTemperature
			cp.AverageTemperature = &v
		}
		out = append(out, cp)
	}
	return out
}

// Point is one dated observation in a prepared series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered, gap-free view of the non-absent temperature values.
type Series []Point

// Values returns the raw observation values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Clone returns an independent copy of the series.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Window slices the dataset to the inclusive date range [from, to], dropping
// rows with an absent temperature. Row order is preserved.
func (d Dataset) Window(from, to time.Time) Series {
	var out Series
	for _, r := range d {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		if r.AverageTemperature == nil {
			continue
		}
		out = append(out, Point{Date: r.Date, Value: *r.AverageTemperature})
	}
	return out
}

// Countries returns the distinct country names in first-appearance order.
func (d Dataset) Countries() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d {
		if !seen[r.Country] {
			seen[r.Country] = true
			out = append(out, r.Country)
		}
	}
	return out
}
