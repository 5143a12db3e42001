// Package services loads the processed report artifacts and answers the
// per-ZIP queries the dashboard makes.
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"zhvipulse/internal/exporter"
	"zhvipulse/pkg/contracts/domain"
)

// ErrZipNotFound is returned when a requested ZIP has no processed data.
var ErrZipNotFound = errors.New("zip not found in processed data")

// DataService serves the combined series and KPI summary per ZIP. The
// processed CSVs are read once at construction; the dataset is small enough
// to hold in memory for the life of the process.
type DataService struct {
	logger  *slog.Logger
	series  map[string][]domain.SeriesPoint
	summary map[string]domain.ZipKPI
	zips    []string
}

// NewDataService loads the processed artifacts from processedDir.
func NewDataService(processedDir string, logger *slog.Logger) (*DataService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &DataService{
		logger:  logger.With(slog.String("component", "data_service")),
		series:  make(map[string][]domain.SeriesPoint),
		summary: make(map[string]domain.ZipKPI),
	}

	if err := s.loadCombinedSeries(filepath.Join(processedDir, exporter.CombinedSeriesFile)); err != nil {
		return nil, fmt.Errorf("load combined series: %w", err)
	}
	if err := s.loadSummary(filepath.Join(processedDir, exporter.ForecastSummaryFile)); err != nil {
		return nil, fmt.Errorf("load forecast summary: %w", err)
	}

	for zip := range s.summary {
		s.zips = append(s.zips, zip)
	}
	sort.Strings(s.zips)

	s.logger.Info("processed data loaded",
		slog.Int("zips", len(s.zips)),
		slog.String("dir", processedDir))

	return s, nil
}

// Zips returns the sorted list of ZIP codes with processed data.
func (s *DataService) Zips(ctx context.Context) []string {
	return s.zips
}

// Series returns the combined history+forecast series for one ZIP.
func (s *DataService) Series(ctx context.Context, zip string) ([]domain.SeriesPoint, error) {
	points, ok := s.series[zip]
	if !ok {
		return nil, fmt.Errorf("zip %s: %w", zip, ErrZipNotFound)
	}
	return points, nil
}

// Summary returns the KPI record for one ZIP.
func (s *DataService) Summary(ctx context.Context, zip string) (domain.ZipKPI, error) {
	kpi, ok := s.summary[zip]
	if !ok {
		return domain.ZipKPI{}, fmt.Errorf("zip %s: %w", zip, ErrZipNotFound)
	}
	return kpi, nil
}

// Insight returns the one-sentence trend statement for one ZIP: expected to
// appreciate, decline, or stay roughly flat over the forecast horizon.
func (s *DataService) Insight(ctx context.Context, zip string) (string, error) {
	kpi, err := s.Summary(ctx, zip)
	if err != nil {
		return "", err
	}

	switch {
	case kpi.GrowthPct5Yr > 0:
		return fmt.Sprintf("ZIP %s is expected to appreciate by %.1f%% over the next 5 years.", zip, kpi.GrowthPct5Yr), nil
	case kpi.GrowthPct5Yr < 0:
		return fmt.Sprintf("ZIP %s is expected to decline by %.1f%% over the next 5 years.", zip, math.Abs(kpi.GrowthPct5Yr)), nil
	default:
		return fmt.Sprintf("ZIP %s is expected to remain roughly flat over the next 5 years.", zip), nil
	}
}

func (s *DataService) loadCombinedSeries(path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	for i, row := range rows {
		if len(row) < 4 {
			return fmt.Errorf("combined series row %d has %d columns, want 4", i+1, len(row))
		}
		year, err := strconv.Atoi(row[1])
		if err != nil {
			return fmt.Errorf("combined series row %d: parse year: %w", i+1, err)
		}
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return fmt.Errorf("combined series row %d: parse price: %w", i+1, err)
		}

		zip := row[0]
		s.series[zip] = append(s.series[zip], domain.SeriesPoint{
			Zip:   zip,
			Year:  year,
			Price: price,
			Type:  domain.PointType(row[3]),
		})
	}
	return nil
}

func (s *DataService) loadSummary(path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	for i, row := range rows {
		if len(row) < 5 {
			return fmt.Errorf("summary row %d has %d columns, want 5", i+1, len(row))
		}
		values := make([]float64, 4)
		for j := 0; j < 4; j++ {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return fmt.Errorf("summary row %d column %d: %w", i+1, j+2, err)
			}
			values[j] = v
		}
		s.summary[row[0]] = domain.ZipKPI{
			Zip:          row[0],
			CurrentValue: values[0],
			Forecast5Yr:  values[1],
			GrowthPct5Yr: values[2],
			CAGR:         values[3],
		}
	}
	return nil
}

// readCSV reads all data rows of a CSV file, skipping the header and any
// UTF-8 BOM.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
