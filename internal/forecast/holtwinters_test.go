package forecast

import (
	"errors"
	"math"
	"testing"
)

// additiveSeries builds a clean monthly series: fixed seasonal profile plus a
// linear trend. Holt-Winters with additive components should track it closely.
func additiveSeries(n int) []float64 {
	profile := []float64{-8, -6, -2, 2, 6, 9, 11, 10, 6, 2, -3, -7}
	data := make([]float64, n)
	for i := range data {
		data[i] = 10 + 0.1*float64(i) + profile[i%12]
	}
	return data
}

func TestFitInsufficientData(t *testing.T) {
	hw := NewHoltWinters(SeasonalPeriod)
	err := hw.Fit(additiveSeries(23))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestForecastTracksAdditiveSeasonality(t *testing.T) {
	n := 48
	data := additiveSeries(n)

	hw := NewHoltWinters(SeasonalPeriod)
	if err := hw.Fit(data); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	got := hw.Forecast(12)
	if len(got) != 12 {
		t.Fatalf("expected 12 forecast points, got %d", len(got))
	}

	want := additiveSeries(n + 12)[n:]
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > 1.5 {
			t.Fatalf("forecast point %d off by %.3f (got %.3f, want %.3f)", i, diff, got[i], want[i])
		}
	}
}

func TestForecastLengthMatchesHorizon(t *testing.T) {
	hw := NewHoltWinters(SeasonalPeriod)
	if err := hw.Fit(additiveSeries(36)); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	for _, h := range []int{0, -3, 1, 7, 24} {
		got := hw.Forecast(h)
		want := h
		if want < 0 {
			want = 0
		}
		if len(got) != want {
			t.Fatalf("horizon %d: expected %d points, got %d", h, want, len(got))
		}
	}
}

// TestFitDeterministic checks that the same input always selects the same
// parameters and produces identical forecasts.
func TestFitDeterministic(t *testing.T) {
	data := additiveSeries(48)

	a := NewHoltWinters(SeasonalPeriod)
	b := NewHoltWinters(SeasonalPeriod)
	if err := a.Fit(data); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	if err := b.Fit(data); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	aAlpha, aBeta, aGamma := a.Params()
	bAlpha, bBeta, bGamma := b.Params()
	if aAlpha != bAlpha || aBeta != bBeta || aGamma != bGamma {
		t.Fatalf("parameters differ: (%v %v %v) vs (%v %v %v)", aAlpha, aBeta, aGamma, bAlpha, bBeta, bGamma)
	}

	fa := a.Forecast(24)
	fb := b.Forecast(24)
	for i := range fa {
		if fa[i] != fb[i] {
			t.Fatalf("forecast point %d differs: %v vs %v", i, fa[i], fb[i])
		}
	}
}
