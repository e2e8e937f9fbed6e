package forecast

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mhuebner/climate-forecasting/internal/dataset"
)

var (
	// ErrNotFitted is returned when model state is read before Fit has
	// populated the city's entry.
	ErrNotFitted = errors.New("model not fitted: run Fit first")

	// ErrUnknownCity is returned for cities outside the configured list.
	ErrUnknownCity = errors.New("unknown city")

	// ErrInsufficientData is returned when a city's train slice is too short
	// to estimate the seasonal component.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrMalformedWindow is returned when the split boundaries are out of order.
	ErrMalformedWindow = errors.New("malformed train/test window")
)

type fitState int

const (
	stateUnfit fitState = iota
	stateFit
)

// cityState is the per-city model lifecycle: created Unfit at construction,
// moved to Fit exactly once per Fit call. Re-fitting overwrites.
type cityState struct {
	state fitState
	model *HoltWinters
	train dataset.Series
	test  dataset.Series
}

// Manager owns one seasonal smoothing model per configured city and
// orchestrates the train/test split, fitting and forecasting for each.
type Manager struct {
	cities []string
	window Window

	mu     sync.RWMutex
	data   dataset.Dataset
	states map[string]*cityState
}

// NewManager stores the dataset, the target cities and the split boundaries.
// The window ordering is validated eagerly; beyond that no computation
// happens until Fit.
func NewManager(ds dataset.Dataset, cities []string, window Window) (*Manager, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	states := make(map[string]*cityState, len(cities))
	for _, city := range cities {
		states[city] = &cityState{state: stateUnfit}
	}

	return &Manager{
		data:   ds,
		cities: append([]string(nil), cities...),
		window: window,
		states: states,
	}, nil
}

// Fit trains one model per city, in list order: select the city's rows, slice
// to the train and test windows (absent values dropped), fit the seasonal
// model on the train slice and store everything keyed by city.
//
// A per-city failure aborts the batch with an error naming the city; cities
// fitted before the failure keep their new state. There is no silent skip.
func (m *Manager) Fit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, city := range m.cities {
		cityRecords := dataset.SelectCity(m.data, city)

		train := cityRecords.Window(m.window.TrainStart, m.window.TrainEnd)
		test := cityRecords.Window(m.window.TestStart, m.window.TestEnd)

		model := NewHoltWinters(SeasonalPeriod)
		if err := model.Fit(train.Values()); err != nil {
			return fmt.Errorf("fit city %q: %w", city, err)
		}

		st := m.states[city]
		st.model = model
		st.train = train
		st.test = test
		st.state = stateFit
	}

	return nil
}

// Predict returns the multi-step forecast for the city up to the target date.
// A zero target resolves to the window's TestEnd. The horizon is the number
// of calendar months between the target and TestStart; a horizon of zero or
// less yields an empty forecast.
func (m *Manager) Predict(city string, target time.Time) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, err := m.fitState(city)
	if err != nil {
		return nil, err
	}

	if target.IsZero() {
		target = m.window.TestEnd
	}

	horizon := MonthsBetween(target, m.window.TestStart)
	if horizon <= 0 {
		return []float64{}, nil
	}

	return st.model.Forecast(horizon), nil
}

// TrainData returns a copy of the stored train slice for the city.
func (m *Manager) TrainData(city string) (dataset.Series, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, err := m.fitState(city)
	if err != nil {
		return nil, err
	}
	return st.train.Clone(), nil
}

// TestData returns a copy of the stored test slice for the city.
func (m *Manager) TestData(city string) (dataset.Series, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, err := m.fitState(city)
	if err != nil {
		return nil, err
	}
	return st.test.Clone(), nil
}

// Model returns the fitted model for the city. The model is shared state;
// callers must treat it as read-only.
func (m *Manager) Model(city string) (*HoltWinters, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, err := m.fitState(city)
	if err != nil {
		return nil, err
	}
	return st.model, nil
}

// Fitted reports whether the city has a trained model.
func (m *Manager) Fitted(city string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[city]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	return st.state == stateFit, nil
}

// Cities returns the configured city list in order.
func (m *Manager) Cities() []string {
	return append([]string(nil), m.cities...)
}

// Window returns the configured split boundaries.
func (m *Manager) Window() Window {
	return m.window
}

// Dataset returns the currently loaded dataset. Callers treat it as read-only.
func (m *Manager) Dataset() dataset.Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}

// Reload swaps the underlying dataset. Existing per-city state is kept until
// the next Fit overwrites it.
func (m *Manager) Reload(ds dataset.Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = ds
}

func (m *Manager) fitState(city string) (*cityState, error) {
	st, ok := m.states[city]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	if st.state != stateFit {
		return nil, fmt.Errorf("%w (city %q)", ErrNotFitted, city)
	}
	return st, nil
}
