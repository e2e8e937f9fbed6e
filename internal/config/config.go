package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mhuebner/climate-forecasting/internal/forecast"
)

type AppConfig struct {
	// DatasetPath is the local by-city temperatures CSV. DatasetURL, when
	// set, takes precedence and the file is downloaded instead.
	DatasetPath string
	DatasetURL  string

	// Cities to fit models for, in order.
	Cities []string

	// Window holds the train/test split boundaries.
	Window forecast.Window

	// RefitInterval controls how often models are re-fit (0 = never).
	RefitInterval time.Duration

	HTTPTimeout time.Duration
	Port        string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.DatasetPath = getenvDefault("DATASET_PATH", "GlobalLandTemperaturesByCity.csv")
	cfg.DatasetURL = os.Getenv("DATASET_URL")

	cities, err := loadCities()
	if err != nil {
		return nil, err
	}
	cfg.Cities = cities

	window, err := loadWindow()
	if err != nil {
		return nil, err
	}
	cfg.Window = window

	refitStr := getenvDefault("REFIT_INTERVAL", "0s")
	refit, err := time.ParseDuration(refitStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFIT_INTERVAL: %w", err)
	}
	cfg.RefitInterval = refit

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func loadCities() ([]string, error) {
	raw := os.Getenv("CITIES")
	var cities []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cities = append(cities, c)
		}
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("CITIES must list at least one city")
	}
	return cities, nil
}

// loadWindow reads the four split boundaries. Each boundary defaults
// independently; overriding one never shifts another.
func loadWindow() (forecast.Window, error) {
	def := forecast.DefaultWindow()

	w := forecast.Window{}
	var err error
	if w.TrainStart, err = loadDate("TRAIN_START", def.TrainStart); err != nil {
		return w, err
	}
	if w.TrainEnd, err = loadDate("TRAIN_END", def.TrainEnd); err != nil {
		return w, err
	}
	if w.TestStart, err = loadDate("TEST_START", def.TestStart); err != nil {
		return w, err
	}
	if w.TestEnd, err = loadDate("TEST_END", def.TestEnd); err != nil {
		return w, err
	}
	return w, nil
}

func loadDate(key string, def time.Time) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
