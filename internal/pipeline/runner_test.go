package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "zhvipulse/internal/errors"
	"zhvipulse/pkg/contracts/domain"
)

func threeYearRow(zip string) domain.RawSeriesRow {
	return domain.RawSeriesRow{
		Zip: zip,
		Observations: []domain.Observation{
			obs(2018, 12, 31, 200000),
			obs(2019, 12, 31, 210000),
			obs(2020, 12, 31, 220000),
		},
	}
}

func TestRunner_EndToEnd(t *testing.T) {
	runner := NewRunner(FlatProjection{}, 5, nil)

	result, err := runner.Run(context.Background(), []domain.RawSeriesRow{threeYearRow("21201")})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.ZipCount)
	assert.Empty(t, result.Skipped)

	// Combined series: 3 historical + 5 forecast points, sorted by year.
	combined := result.Report.Combined
	require.Len(t, combined, 8)
	assert.Equal(t, domain.SeriesPoint{Zip: "21201", Year: 2020, Price: 220000, Type: domain.PointHistorical}, combined[2])
	for i, p := range combined[3:] {
		assert.Equal(t, 2021+i, p.Year)
		assert.Equal(t, 220000.0, p.Price)
		assert.Equal(t, domain.PointForecast, p.Type)
	}

	require.Len(t, result.Report.Summary, 1)
	kpi := result.Report.Summary[0]
	assert.Equal(t, 220000.0, kpi.CurrentValue)
	assert.Equal(t, 220000.0, kpi.Forecast5Yr)
	assert.Zero(t, kpi.GrowthPct5Yr)
	assert.Zero(t, kpi.CAGR)

	require.Len(t, result.Report.YearlyHistory, 3)
	assert.Equal(t, domain.PointHistorical, result.Report.YearlyHistory[0].Type)
}

func TestRunner_ErrorIsolation(t *testing.T) {
	rows := []domain.RawSeriesRow{
		threeYearRow("21201"),
		{
			Zip:          "21777", // only one year of data
			Observations: []domain.Observation{obs(2020, 12, 31, 100000)},
		},
		threeYearRow("21230"),
	}

	runner := NewRunner(FlatProjection{}, 5, nil)
	result, err := runner.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ZipCount)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "21777", result.Skipped[0].Zip)
	assert.Equal(t, "INSUFFICIENT_HISTORY", result.Skipped[0].Reason)

	zips := make([]string, 0, len(result.Report.Summary))
	for _, kpi := range result.Report.Summary {
		zips = append(zips, kpi.Zip)
	}
	assert.Equal(t, []string{"21201", "21230"}, zips)
}

func TestRunner_InvalidPriceExcludedFromSummary(t *testing.T) {
	rows := []domain.RawSeriesRow{
		threeYearRow("21201"),
		{
			Zip: "21999",
			Observations: []domain.Observation{
				obs(2019, 12, 31, 150000),
				obs(2020, 12, 31, 0), // current price zero
			},
		},
	}

	runner := NewRunner(FlatProjection{}, 5, nil)
	result, err := runner.Run(context.Background(), rows)
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "INVALID_PRICE", result.Skipped[0].Reason)
	require.Len(t, result.Report.Summary, 1)
	assert.Equal(t, "21201", result.Report.Summary[0].Zip)
}

func TestRunner_NoRows(t *testing.T) {
	runner := NewRunner(FlatProjection{}, 5, nil)
	_, err := runner.Run(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrDataNotFound)
}

func TestRunner_AllZipsFail(t *testing.T) {
	runner := NewRunner(FlatProjection{}, 5, nil)
	_, err := runner.Run(context.Background(), []domain.RawSeriesRow{
		{Zip: "21201", Observations: []domain.Observation{obs(2020, 12, 31, 1)}},
	})
	assert.ErrorIs(t, err, apperrors.ErrDataNotFound)
}

func TestRunner_DeterministicOrdering(t *testing.T) {
	// Input rows arrive unsorted; output tables must come back sorted by ZIP.
	rows := []domain.RawSeriesRow{threeYearRow("21230"), threeYearRow("21201")}

	runner := NewRunner(FlatProjection{}, 5, nil)
	result, err := runner.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, "21201", result.Report.Summary[0].Zip)
	assert.Equal(t, "21201", result.Report.Combined[0].Zip)
	for i := 1; i < len(result.Report.Combined); i++ {
		prev, cur := result.Report.Combined[i-1], result.Report.Combined[i]
		if prev.Zip == cur.Zip {
			assert.LessOrEqual(t, prev.Year, cur.Year)
		} else {
			assert.Less(t, prev.Zip, cur.Zip)
		}
	}
}

func TestRunner_LinearStrategyProducesGrowth(t *testing.T) {
	runner := NewRunner(LinearTrend{}, 5, nil)
	result, err := runner.Run(context.Background(), []domain.RawSeriesRow{threeYearRow("21201")})
	require.NoError(t, err)

	kpi := result.Report.Summary[0]
	assert.Greater(t, kpi.GrowthPct5Yr, 0.0)
	assert.Greater(t, kpi.CAGR, 0.0)
	assert.InDelta(t, 270000, kpi.Forecast5Yr, 1e-6)
}
