// Package eda holds the exploratory statistics over the historical
// temperature records: most severe per-country temperature changes and
// variability rankings across cities.
package eda

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mhuebner/climate-forecasting/internal/dataset"
)

// Supported variability measures.
const (
	MeasureVariance = "var"
	MeasureStdDev   = "std"
	MeasureRange    = "range"
	MeasureIQR      = "iqr"
)

// Variability computes the requested spread statistic over the values.
// Variance and standard deviation use the sample (n-1) form; the IQR uses
// linear interpolation between order statistics. At least two values are
// required.
func Variability(values []float64, measure string) (float64, error) {
	if len(values) < 2 {
		return 0, fmt.Errorf("variability needs at least 2 values, got %d", len(values))
	}

	switch measure {
	case MeasureVariance:
		return sampleVariance(values), nil
	case MeasureStdDev:
		return math.Sqrt(sampleVariance(values)), nil
	case MeasureRange:
		min, max := values[0], values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		return max - min, nil
	case MeasureIQR:
		return quantile(values, 0.75) - quantile(values, 0.25), nil
	default:
		return 0, fmt.Errorf("unknown variability measure: %q. Please choose between: 'var', 'std', 'range' and 'iqr'", measure)
	}
}

func sampleVariance(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(values)-1)
}

// quantile returns the q-th quantile with linear interpolation between
// adjacent order statistics.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// CountryChange is the most severe decade-over-decade change in average
// temperature for one country. MaxChange is nil when fewer than two decades
// of data exist.
type CountryChange struct {
	Country   string   `json:"country"`
	MaxChange *float64 `json:"maxChange"`
}

// MaxChangesByCountry computes, for every country in the dataset, the largest
// increase between successive decade means of the average temperature,
// considering records from startYear on. Countries appear in first-appearance
// order.
func MaxChangesByCountry(ds dataset.Dataset, startYear int) []CountryChange {
	countries := ds.Countries()
	out := make([]CountryChange, 0, len(countries))

	type bucket struct {
		sum float64
		n   int
	}

	for _, country := range countries {
		// Decade means, keyed by decade start year.
		buckets := make(map[int]*bucket)
		for _, r := range ds {
			if r.Country != country || r.AverageTemperature == nil {
				continue
			}
			year := r.Date.Year()
			if year < startYear {
				continue
			}
			decade := (year / 10) * 10
			b, ok := buckets[decade]
			if !ok {
				b = &bucket{}
				buckets[decade] = b
			}
			b.sum += *r.AverageTemperature
			b.n++
		}

		decades := make([]int, 0, len(buckets))
		for d := range buckets {
			decades = append(decades, d)
		}
		sort.Ints(decades)

		change := CountryChange{Country: country}
		var maxDiff float64
		found := false
		for i := 1; i < len(decades); i++ {
			prev := buckets[decades[i-1]]
			cur := buckets[decades[i]]
			diff := cur.sum/float64(cur.n) - prev.sum/float64(prev.n)
			if !found || diff > maxDiff {
				found = true
				maxDiff = diff
			}
		}
		if found {
			v := maxDiff
			change.MaxChange = &v
		}

		out = append(out, change)
	}

	return out
}

// CityVariability is the computed spread statistic for one city, identified
// by its composite "City, Country" key.
type CityVariability struct {
	City  string  `json:"city"`
	Value float64 `json:"value"`
}

// TopVariabilityCities ranks cities by the given variability measure over the
// inclusive [from, to] period and returns the top n composite city keys along
// with the full per-city table (first-appearance order). Cities with fewer
// than two observations in the period carry no measure and are left out.
func TopVariabilityCities(ds dataset.Dataset, n int, from, to time.Time, measure string) ([]string, []CityVariability, error) {
	type cityValues struct {
		key    string
		values []float64
	}

	index := make(map[string]int)
	var cities []cityValues

	for _, r := range ds {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		key := dataset.Key(r.City, r.Country)
		i, ok := index[key]
		if !ok {
			i = len(cities)
			index[key] = i
			cities = append(cities, cityValues{key: key})
		}
		if r.AverageTemperature != nil {
			cities[i].values = append(cities[i].values, *r.AverageTemperature)
		}
	}

	table := make([]CityVariability, 0, len(cities))
	for _, c := range cities {
		if len(c.values) < 2 {
			continue
		}
		v, err := Variability(c.values, measure)
		if err != nil {
			return nil, nil, err
		}
		table = append(table, CityVariability{City: c.key, Value: v})
	}

	// Descending by value; stable so ties keep first-appearance order.
	ranked := append([]CityVariability(nil), table...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})

	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	top := make([]string, 0, n)
	for _, c := range ranked[:n] {
		top = append(top, c.City)
	}

	return top, table, nil
}
