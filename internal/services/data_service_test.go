package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhvipulse/internal/exporter"
	"zhvipulse/pkg/contracts/domain"
)

func writeFixtures(t *testing.T, summaryRows string) string {
	t.Helper()
	dir := t.TempDir()

	combined := "Zip,Year,Price,Type\n" +
		"21201,2019,210000.00,Historical\n" +
		"21201,2020,220000.00,Historical\n" +
		"21201,2021,220000.00,Forecast\n" +
		"21230,2019,250000.00,Historical\n" +
		"21230,2020,260000.00,Historical\n" +
		"21230,2021,270000.00,Forecast\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, exporter.CombinedSeriesFile), []byte(combined), 0644))

	summary := "Zip,CurrentValue,Forecast5Yr,GrowthPct5Yr,CAGR\n" + summaryRows
	require.NoError(t, os.WriteFile(filepath.Join(dir, exporter.ForecastSummaryFile), []byte(summary), 0644))

	return dir
}

func defaultFixtures(t *testing.T) string {
	return writeFixtures(t,
		"21201,220000.00,220000.00,0.00,0.0000\n"+
			"21230,260000.00,270000.00,3.85,0.7581\n")
}

func TestNewDataService_LoadsArtifacts(t *testing.T) {
	svc, err := NewDataService(defaultFixtures(t), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"21201", "21230"}, svc.Zips(context.Background()))
}

func TestDataService_Series(t *testing.T) {
	svc, err := NewDataService(defaultFixtures(t), nil)
	require.NoError(t, err)

	points, err := svc.Series(context.Background(), "21201")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, domain.PointHistorical, points[0].Type)
	assert.Equal(t, domain.PointForecast, points[2].Type)
	assert.Equal(t, 220000.0, points[2].Price)

	_, err = svc.Series(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrZipNotFound)
}

func TestDataService_Summary(t *testing.T) {
	svc, err := NewDataService(defaultFixtures(t), nil)
	require.NoError(t, err)

	kpi, err := svc.Summary(context.Background(), "21230")
	require.NoError(t, err)
	assert.Equal(t, 260000.0, kpi.CurrentValue)
	assert.InDelta(t, 3.85, kpi.GrowthPct5Yr, 1e-9)

	_, err = svc.Summary(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrZipNotFound)
}

func TestDataService_Insight(t *testing.T) {
	dir := writeFixtures(t,
		"21201,220000.00,220000.00,0.00,0.0000\n"+
			"21230,260000.00,270000.00,3.85,0.7581\n")
	svc, err := NewDataService(dir, nil)
	require.NoError(t, err)

	ctx := context.Background()

	flat, err := svc.Insight(ctx, "21201")
	require.NoError(t, err)
	assert.Equal(t, "ZIP 21201 is expected to remain roughly flat over the next 5 years.", flat)

	up, err := svc.Insight(ctx, "21230")
	require.NoError(t, err)
	assert.Equal(t, "ZIP 21230 is expected to appreciate by 3.9% over the next 5 years.", up)
}

func TestDataService_InsightDecline(t *testing.T) {
	dir := writeFixtures(t, "21201,220000.00,200000.00,-9.09,-1.8879\n"+
		"21230,260000.00,270000.00,3.85,0.7581\n")
	svc, err := NewDataService(dir, nil)
	require.NoError(t, err)

	down, err := svc.Insight(context.Background(), "21201")
	require.NoError(t, err)
	assert.Equal(t, "ZIP 21201 is expected to decline by 9.1% over the next 5 years.", down)
}

func TestNewDataService_MissingArtifacts(t *testing.T) {
	_, err := NewDataService(t.TempDir(), nil)
	assert.Error(t, err)
}
