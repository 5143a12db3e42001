// Package pipeline implements the ZHVI transformation stages: monthly raw
// series to yearly aggregates, yearly aggregates to a 5-year projection, and
// projection to per-ZIP KPIs and report tables. Each stage takes an immutable
// input and returns a new value, so a run is idempotent end to end.
package pipeline

import (
	"fmt"
	"sort"

	apperrors "zhvipulse/internal/errors"
	"zhvipulse/pkg/contracts/domain"
)

// Reshape collapses each row's monthly observations to one value per calendar
// year: the value at the latest dated observation within that year. Years
// without observations are omitted, never interpolated.
func Reshape(rows []domain.RawSeriesRow) (domain.ZipYearSeries, error) {
	series := make(domain.ZipYearSeries, len(rows))

	for _, row := range rows {
		yearly, err := ReshapeRow(row)
		if err != nil {
			return nil, err
		}
		series[row.Zip] = yearly
	}

	return series, nil
}

// ReshapeRow aggregates a single row's observations to yearly values.
// Fewer than two distinct years is not enough to project a trend from.
func ReshapeRow(row domain.RawSeriesRow) ([]domain.YearValue, error) {
	type lastObs struct {
		date  int64
		value float64
	}
	byYear := make(map[int]lastObs)

	for _, obs := range row.Observations {
		year := obs.Date.Year()
		if prev, ok := byYear[year]; ok && prev.date >= obs.Date.Unix() {
			continue
		}
		byYear[year] = lastObs{date: obs.Date.Unix(), value: obs.Value}
	}

	if len(byYear) < 2 {
		return nil, fmt.Errorf("zip %s has %d years of data: %w", row.Zip, len(byYear), apperrors.ErrInsufficientHistory)
	}

	yearly := make([]domain.YearValue, 0, len(byYear))
	for year, obs := range byYear {
		yearly = append(yearly, domain.YearValue{Year: year, Value: obs.value})
	}
	sort.Slice(yearly, func(i, j int) bool { return yearly[i].Year < yearly[j].Year })

	return yearly, nil
}
