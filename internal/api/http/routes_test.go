package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mhuebner/climate-forecasting/internal/dataset"
	"github.com/mhuebner/climate-forecasting/internal/forecast"
)

var testWindow = forecast.Window{
	TrainStart: time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC),
	TrainEnd:   time.Date(1999, time.December, 1, 0, 0, 0, 0, time.UTC),
	TestStart:  time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	TestEnd:    time.Date(2001, time.December, 1, 0, 0, 0, 0, time.UTC),
}

func newTestApp(t *testing.T, fit bool) *fiber.App {
	t.Helper()

	profile := []float64{-8, -6, -2, 2, 6, 9, 11, 10, 6, 2, -3, -7}
	var ds dataset.Dataset
	for i := 0; i < 72; i++ {
		v := 10 + 0.05*float64(i) + profile[i%12]
		ds = append(ds, dataset.Record{
			Date:               testWindow.TrainStart.AddDate(0, i, 0),
			City:               "Berlin",
			Country:            "Germany",
			AverageTemperature: &v,
		})
	}

	mgr, err := forecast.NewManager(ds, []string{"Berlin"}, testWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fit {
		if err := mgr.Fit(); err != nil {
			t.Fatalf("unexpected fit error: %v", err)
		}
	}

	app := fiber.New()
	RegisterRoutes(app, mgr)
	return app
}

// TestForecastValidation verifies the forecast endpoint rejects requests
// without a city and requests with an unparseable target date.
func TestForecastValidation(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/forecast?city=Berlin&target=march-2001", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestForecastUnknownCity(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?city=Atlantis", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestForecastBeforeFit(t *testing.T) {
	app := newTestApp(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?city=Berlin", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestForecastHappyPath(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?city=Berlin&target=2000-03-01", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		City        string `json:"city"`
		Horizon     int    `json:"horizon"`
		Predictions []struct {
			Month string  `json:"month"`
			Value float64 `json:"value"`
		} `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.City != "Berlin" || body.Horizon != 2 || len(body.Predictions) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Predictions[0].Month != "2000-02" {
		t.Fatalf("expected first prediction month 2000-02, got %s", body.Predictions[0].Month)
	}
}

func TestTrainSliceEndpoint(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/train?city=Berlin", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Points []struct {
			Value float64 `json:"value"`
		} `json:"points"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Points) != 48 {
		t.Fatalf("expected 48 train points, got %d", len(body.Points))
	}
}

// TestVariabilityValidation verifies the EDA endpoint enforces its required
// query parameters and the known measure names.
func TestVariabilityValidation(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/eda/variability?from=2000-01-01&to=2001-01-01", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/eda/variability?n=3&from=2000-01-01&to=2001-01-01&measure=mad", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestVariabilityHappyPath(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/eda/variability?n=1&from=1996-01-01&to=2001-12-01&measure=range", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Top []string `json:"top"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Top) != 1 || body.Top[0] != "Berlin, Germany" {
		t.Fatalf("unexpected top cities: %v", body.Top)
	}
}

func TestMaxChangesEndpoint(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/eda/max-changes?start_year=1850", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Countries []struct {
			Country string `json:"country"`
		} `json:"countries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Countries) != 1 || body.Countries[0].Country != "Germany" {
		t.Fatalf("unexpected countries: %+v", body.Countries)
	}
}
