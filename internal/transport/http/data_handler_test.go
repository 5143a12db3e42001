package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhvipulse/internal/services"
	"zhvipulse/pkg/contracts/domain"
)

// stubDataService implements DataServiceInterface for handler tests.
type stubDataService struct {
	zips    []string
	series  map[string][]domain.SeriesPoint
	summary map[string]domain.ZipKPI
}

func (s *stubDataService) Zips(ctx context.Context) []string { return s.zips }

func (s *stubDataService) Series(ctx context.Context, zip string) ([]domain.SeriesPoint, error) {
	points, ok := s.series[zip]
	if !ok {
		return nil, fmt.Errorf("zip %s: %w", zip, services.ErrZipNotFound)
	}
	return points, nil
}

func (s *stubDataService) Summary(ctx context.Context, zip string) (domain.ZipKPI, error) {
	kpi, ok := s.summary[zip]
	if !ok {
		return domain.ZipKPI{}, fmt.Errorf("zip %s: %w", zip, services.ErrZipNotFound)
	}
	return kpi, nil
}

func (s *stubDataService) Insight(ctx context.Context, zip string) (string, error) {
	if _, err := s.Summary(ctx, zip); err != nil {
		return "", err
	}
	return "ZIP " + zip + " is expected to remain roughly flat over the next 5 years.", nil
}

func newTestHandler() *DataHandler {
	return NewDataHandler(&stubDataService{
		zips: []string{"21201", "21230"},
		series: map[string][]domain.SeriesPoint{
			"21201": {
				{Zip: "21201", Year: 2020, Price: 220000, Type: domain.PointHistorical},
				{Zip: "21201", Year: 2021, Price: 220000, Type: domain.PointForecast},
			},
		},
		summary: map[string]domain.ZipKPI{
			"21201": {Zip: "21201", CurrentValue: 220000, Forecast5Yr: 220000},
		},
	}, nil)
}

func doRequest(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	newTestHandler().Routes().ServeHTTP(rec, req)
	return rec
}

func TestGetZips(t *testing.T) {
	rec := doRequest(t, "/zips")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string   `json:"status"`
		Data   []string `json:"data"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, []string{"21201", "21230"}, body.Data)
	assert.Equal(t, 2, body.Count)
}

func TestGetSeries(t *testing.T) {
	rec := doRequest(t, "/zips/21201/series")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Zip   string               `json:"zip"`
		Data  []domain.SeriesPoint `json:"data"`
		Count int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "21201", body.Zip)
	require.Len(t, body.Data, 2)
	assert.Equal(t, domain.PointForecast, body.Data[1].Type)
}

func TestGetSummary_UnknownZip(t *testing.T) {
	rec := doRequest(t, "/zips/99999/summary")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "NOT_FOUND", body.Error.ErrorCode)
}

func TestGetInsight(t *testing.T) {
	rec := doRequest(t, "/zips/21201/insight")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Insight string `json:"insight"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Insight, "roughly flat")
}

func TestZipCtx_RejectsMalformedZip(t *testing.T) {
	tests := []string{"2120", "abcde", "212011"}
	for _, zip := range tests {
		t.Run(zip, func(t *testing.T) {
			rec := doRequest(t, "/zips/"+zip+"/summary")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
