package exporter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhvipulse/internal/pipeline"
	"zhvipulse/pkg/contracts/domain"
)

func testResult(t *testing.T) *pipeline.Result {
	t.Helper()

	row := domain.RawSeriesRow{
		Zip: "21201",
		Observations: []domain.Observation{
			{Date: time.Date(2018, 12, 31, 0, 0, 0, 0, time.UTC), Value: 200000},
			{Date: time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC), Value: 210000},
			{Date: time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), Value: 220000},
		},
	}

	runner := pipeline.NewRunner(pipeline.FlatProjection{}, 5, nil)
	result, err := runner.Run(context.Background(), []domain.RawSeriesRow{row})
	require.NoError(t, err)
	return result
}

func TestWriteReport_Artifacts(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, nil)

	require.NoError(t, writer.WriteReport(testResult(t)))

	for _, name := range []string{YearlyHistoryFile, ForecastSummaryFile, CombinedSeriesFile, RunManifestFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	summary, err := os.ReadFile(filepath.Join(dir, ForecastSummaryFile))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(summary)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Zip,CurrentValue,Forecast5Yr,GrowthPct5Yr,CAGR", lines[0])
	assert.Equal(t, "21201,220000.00,220000.00,0.00,0.0000", lines[1])
}

func TestWriteReport_CombinedSeriesSchema(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, nil)
	require.NoError(t, writer.WriteReport(testResult(t)))

	combined, err := os.ReadFile(filepath.Join(dir, CombinedSeriesFile))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(combined)), "\n")
	require.Len(t, lines, 9) // header + 3 historical + 5 forecast
	assert.Equal(t, "Zip,Year,Price,Type", lines[0])
	assert.Equal(t, "21201,2020,220000.00,Historical", lines[3])
	assert.Equal(t, "21201,2021,220000.00,Forecast", lines[4])
	assert.Equal(t, "21201,2025,220000.00,Forecast", lines[8])
}

func TestWriteReport_TablesAreByteIdenticalAcrossRuns(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	require.NoError(t, NewCSVWriter(dirA, nil).WriteReport(testResult(t)))
	require.NoError(t, NewCSVWriter(dirB, nil).WriteReport(testResult(t)))

	for _, name := range []string{YearlyHistoryFile, ForecastSummaryFile, CombinedSeriesFile} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s must be byte-identical across runs", name)
	}
}

func TestWriteCSV_BOMPrefix(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, nil)

	require.NoError(t, writer.WriteCSV("bom.csv", WriteOptions{
		Headers:   []string{"A"},
		Records:   [][]string{{"1"}},
		BOMPrefix: true,
	}))

	data, err := os.ReadFile(filepath.Join(dir, "bom.csv"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
}
