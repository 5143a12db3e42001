package domain

import (
	"time"
)

// Observation is a single dated home-value reading from the raw ZHVI series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RawSeriesRow is one region row from the wide-format ZHVI file: the
// identifying columns plus the full monthly observation sequence.
// Observations are ordered by date with no duplicates.
type RawSeriesRow struct {
	Zip          string        `json:"zip"`
	City         string        `json:"city,omitempty"`
	State        string        `json:"state"`
	County       string        `json:"county"`
	Metro        string        `json:"metro,omitempty"`
	Observations []Observation `json:"observations"`
}

// YearValue is one yearly aggregate: the median home value observed in the
// last available month of that calendar year.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// ZipYearSeries maps a ZIP code to its yearly value sequence.
// Years are strictly increasing within each slice.
type ZipYearSeries map[string][]YearValue

// PointType distinguishes observed history from projected values in a
// combined series.
type PointType string

const (
	PointHistorical PointType = "Historical"
	PointForecast   PointType = "Forecast"
)

// SeriesPoint is one (ZIP, year, value) entry in the combined
// history-plus-forecast series.
type SeriesPoint struct {
	Zip   string    `json:"zip"`
	Year  int       `json:"year"`
	Price float64   `json:"price"`
	Type  PointType `json:"type"`
}

// IsForecast reports whether the point was projected rather than observed.
func (p SeriesPoint) IsForecast() bool {
	return p.Type == PointForecast
}

// ZipKPI holds the per-ZIP headline metrics derived from the combined series.
// It is recomputed from the series on every pipeline run, never edited.
type ZipKPI struct {
	Zip          string  `json:"zip"`
	CurrentValue float64 `json:"current_value"`
	Forecast5Yr  float64 `json:"forecast_5yr"`
	GrowthPct5Yr float64 `json:"growth_pct_5yr"`
	CAGR         float64 `json:"cagr"`
}

// SkippedZip records a ZIP the pipeline could not process and why.
type SkippedZip struct {
	Zip    string `json:"zip"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}
