package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mhuebner/climate-forecasting/internal/dataset"
	"github.com/mhuebner/climate-forecasting/internal/eda"
	"github.com/mhuebner/climate-forecasting/internal/forecast"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, mgr *forecast.Manager) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		type cityStatus struct {
			City   string `json:"city"`
			Fitted bool   `json:"fitted"`
		}

		cities := mgr.Cities()
		statuses := make([]cityStatus, 0, len(cities))
		for _, city := range cities {
			fitted, err := mgr.Fitted(city)
			if err != nil {
				return mapForecastError(err)
			}
			statuses = append(statuses, cityStatus{City: city, Fitted: fitted})
		}

		return c.JSON(fiber.Map{
			"window": mgr.Window(),
			"cities": statuses,
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		req, err := parseForecastQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		predictions, err := mgr.Predict(req.City, req.Target)
		if err != nil {
			return mapForecastError(err)
		}

		// Predictions are monthly, starting the month after TestStart.
		type point struct {
			Month string  `json:"month"`
			Value float64 `json:"value"`
		}
		points := make([]point, 0, len(predictions))
		testStart := mgr.Window().TestStart
		for i, v := range predictions {
			points = append(points, point{
				Month: testStart.AddDate(0, i+1, 0).Format("2006-01"),
				Value: v,
			})
		}

		target := req.Target
		if target.IsZero() {
			target = mgr.Window().TestEnd
		}

		return c.JSON(fiber.Map{
			"city":        req.City,
			"target":      target.Format("2006-01-02"),
			"horizon":     len(predictions),
			"predictions": points,
		})
	})

	v1.Get("/train", sliceHandler("train", mgr.TrainData))
	v1.Get("/test", sliceHandler("test", mgr.TestData))

	v1.Get("/eda/variability", func(c *fiber.Ctx) error {
		var req variabilityQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		top, table, err := eda.TopVariabilityCities(mgr.Dataset(), req.N, req.From, req.To, req.Measure)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"measure": req.Measure,
			"from":    req.From.Format("2006-01-02"),
			"to":      req.To.Format("2006-01-02"),
			"top":     top,
			"cities":  table,
		})
	})

	v1.Get("/eda/max-changes", func(c *fiber.Ctx) error {
		startYear := 1850
		if v := c.Query("start_year"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid start_year")
			}
			startYear = n
		}

		changes := eda.MaxChangesByCountry(mgr.Dataset(), startYear)
		return c.JSON(fiber.Map{
			"startYear": startYear,
			"countries": changes,
		})
	})
}

// mapForecastError translates the manager's error kinds into HTTP statuses.
func mapForecastError(err error) error {
	switch {
	case errors.Is(err, forecast.ErrUnknownCity):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, forecast.ErrNotFitted):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, forecast.ErrInsufficientData), errors.Is(err, forecast.ErrMalformedWindow):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	City   string `validate:"required"`
	Target time.Time
}

func parseForecastQuery(c *fiber.Ctx) (forecastQuery, error) {
	var q forecastQuery

	q.City = c.Query("city")

	if target := c.Query("target"); target != "" {
		t, err := time.Parse("2006-01-02", target)
		if err != nil {
			return q, errors.New("invalid target date; use YYYY-MM-DD")
		}
		q.Target = t
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// sliceHandler serves the stored train/test slices for a city.
func sliceHandler(name string, get func(string) (dataset.Series, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		series, err := get(city)
		if err != nil {
			return mapForecastError(err)
		}

		return c.JSON(fiber.Map{
			"city":   city,
			"slice":  name,
			"points": series,
		})
	}
}

// variabilityQuery holds query parameters for the variability endpoint.
type variabilityQuery struct {
	N       int       `validate:"required,min=1"`
	From    time.Time `validate:"required"`
	To      time.Time `validate:"required,gtefield=From"`
	Measure string    `validate:"required,oneof=var std range iqr"`
}

func (q *variabilityQuery) bind(c *fiber.Ctx) error {
	nStr := c.Query("n")
	if nStr == "" {
		return errors.New("n query parameter is required")
	}
	n, err := strconv.Atoi(nStr)
	if err != nil {
		return errors.New("invalid n; must be an integer")
	}
	q.N = n

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return errors.New("invalid from date; use YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return errors.New("invalid to date; use YYYY-MM-DD")
	}
	q.From = from
	q.To = to

	q.Measure = c.Query("measure", eda.MeasureVariance)
	return nil
}
