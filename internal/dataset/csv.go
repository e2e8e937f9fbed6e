package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names of the Global Land Temperatures CSV exports. The by-city shape
// carries all four; the by-country shape has no City column.
const (
	colDate        = "dt"
	colTemperature = "AverageTemperature"
	colCity        = "City"
	colCountry     = "Country"
)

// LoadCSV reads a temperatures CSV from disk. See ReadCSV for the accepted shapes.
func LoadCSV(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses a temperatures CSV stream into a Dataset. Both reference
// shapes are accepted: by-city (dt, AverageTemperature, City, Country) and
// by-country (dt, AverageTemperature, Country). Empty or NaN temperature
// cells become absent values. Row order is preserved.
func ReadCSV(r io.Reader) (Dataset, error) {
	// Keep every cell as its raw string: dates and coordinates are not
	// numeric, and absent temperatures must stay distinguishable from zero.
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, df.Err
	}

	cols := make(map[string]int, len(df.Names()))
	for i, name := range df.Names() {
		cols[name] = i
	}
	for _, required := range []string{colDate, colTemperature, colCountry} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("dataset is missing required column %q", required)
		}
	}
	cityIdx, hasCity := cols[colCity]

	records := df.Records()[1:] // skip header row

	ds := make(Dataset, 0, len(records))
	for i, row := range records {
		date, err := time.Parse("2006-01-02", row[cols[colDate]])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i+1, row[cols[colDate]], err)
		}

		rec := Record{
			Date:    date,
			Country: row[cols[colCountry]],
		}
		if hasCity {
			rec.City = row[cityIdx]
		}

		if raw := row[cols[colTemperature]]; raw != "" && raw != "NaN" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid temperature %q: %w", i+1, raw, err)
			}
			rec.AverageTemperature = &v
		}

		ds = append(ds, rec)
	}

	return ds, nil
}
