package forecast

import (
	"fmt"
)

// SeasonalPeriod is the season length for monthly data with yearly seasonality.
const SeasonalPeriod = 12

// HoltWinters is an additive triple exponential smoothing model: level, trend
// and a repeating seasonal component, all combined additively.
//
// Level:    L_t = a(Y_t - S_{t-m}) + (1-a)(L_{t-1} + T_{t-1})
// Trend:    T_t = b(L_t - L_{t-1}) + (1-b)T_{t-1}
// Seasonal: S_t = g(Y_t - L_t) + (1-g)S_{t-m}
// Forecast: F_{t+h} = L_t + h*T_t + S_{t-m+h}
//
// Smoothing parameters are chosen by a fixed grid search minimizing in-sample
// SSE, so fitting the same data always yields the same model.
type HoltWinters struct {
	period int

	alpha, beta, gamma float64

	level     float64
	trend     float64
	seasonals []float64

	n      int // number of fitted observations
	fitted bool
}

// NewHoltWinters creates an unfit model with the given season length.
func NewHoltWinters(period int) *HoltWinters {
	return &HoltWinters{period: period}
}

// Fit trains the model on the observations in order. At least two full
// seasonal cycles are required; with less the seasonal component cannot be
// estimated.
func (hw *HoltWinters) Fit(data []float64) error {
	if len(data) < 2*hw.period {
		return fmt.Errorf("%w: need at least %d points (two full seasonal cycles of %d), got %d",
			ErrInsufficientData, 2*hw.period, hw.period, len(data))
	}

	bestAlpha, bestBeta, bestGamma := 0.0, 0.0, 0.0
	bestSSE := 0.0
	first := true

	// Fixed, deterministic grid; strict improvement keeps the earliest
	// combination on ties.
	for i := 1; i <= 9; i++ {
		alpha := float64(i) / 10
		for j := 1; j <= 10; j++ {
			beta := float64(j) / 20
			for k := 1; k <= 10; k++ {
				gamma := float64(k) / 20

				_, _, _, sse := hw.run(data, alpha, beta, gamma)
				if first || sse < bestSSE {
					first = false
					bestSSE = sse
					bestAlpha, bestBeta, bestGamma = alpha, beta, gamma
				}
			}
		}
	}

	hw.alpha, hw.beta, hw.gamma = bestAlpha, bestBeta, bestGamma
	hw.level, hw.trend, hw.seasonals, _ = hw.run(data, bestAlpha, bestBeta, bestGamma)
	hw.n = len(data)
	hw.fitted = true
	return nil
}

// run performs one full smoothing pass with the given parameters and returns
// the final component state along with the one-step-ahead SSE.
func (hw *HoltWinters) run(data []float64, alpha, beta, gamma float64) (level, trend float64, seasonals []float64, sse float64) {
	m := hw.period

	// Initial level: mean of the first season.
	var sum float64
	for i := 0; i < m; i++ {
		sum += data[i]
	}
	level = sum / float64(m)

	// Initial trend: average change between the first two seasons.
	var trendSum float64
	for i := 0; i < m; i++ {
		trendSum += (data[m+i] - data[i]) / float64(m)
	}
	trend = trendSum / float64(m)

	// Initial seasonals, normalized to sum to zero.
	seasonals = make([]float64, m)
	for i := 0; i < m; i++ {
		seasonals[i] = data[i] - level
	}
	var seasonalSum float64
	for _, s := range seasonals {
		seasonalSum += s
	}
	avg := seasonalSum / float64(m)
	for i := range seasonals {
		seasonals[i] -= avg
	}

	for t := m; t < len(data); t++ {
		idx := t % m

		oneStep := level + trend + seasonals[idx]
		e := data[t] - oneStep
		sse += e * e

		prevLevel := level
		level = alpha*(data[t]-seasonals[idx]) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		seasonals[idx] = gamma*(data[t]-level) + (1-gamma)*seasonals[idx]
	}

	return level, trend, seasonals, sse
}

// Forecast returns h multi-step-ahead predictions, one per future period,
// continuing directly after the fitted observations. h <= 0 yields an empty
// slice. Forecast panics if the model was never fit; the Manager guards that.
func (hw *HoltWinters) Forecast(h int) []float64 {
	if !hw.fitted {
		panic("forecast: model not fitted")
	}

	out := make([]float64, 0, max(h, 0))
	for step := 1; step <= h; step++ {
		idx := (hw.n + step - 1) % hw.period
		out = append(out, hw.level+float64(step)*hw.trend+hw.seasonals[idx])
	}
	return out
}

// Params returns the selected smoothing parameters (alpha, beta, gamma).
func (hw *HoltWinters) Params() (alpha, beta, gamma float64) {
	return hw.alpha, hw.beta, hw.gamma
}
