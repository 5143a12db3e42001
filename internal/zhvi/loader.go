package zhvi

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "zhvipulse/internal/errors"
	"zhvipulse/pkg/contracts/domain"
)

// dateLayout is the column layout Zillow uses for monthly ZHVI columns.
const dateLayout = "2006-01-02"

// Target describes the region filter applied to the raw file. County and
// State restrict by the identifying columns; a non-empty ZipCodes list
// additionally restricts to those ZIPs.
type Target struct {
	State    string
	County   string
	ZipCodes []string
}

// Loader reads the wide-format ZHVI file and restricts it to a target region.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "zhvi_loader"))}
}

// LoadFile reads a raw ZHVI file from disk. CSV is the native Zillow export;
// XLSX is accepted for hand-edited copies.
func (l *Loader) LoadFile(ctx context.Context, path string, target Target) ([]domain.RawSeriesRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return l.loadExcel(ctx, path, target)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsingError("open raw file", err).WithContext("path", path)
	}
	defer f.Close()

	return l.Load(ctx, f, target)
}

// Load parses CSV content from r and applies the target filter.
func (l *Loader) Load(ctx context.Context, r io.Reader, target Target) ([]domain.RawSeriesRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("read header", err)
	}

	layout, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read record", err)
		}
		rows = append(rows, record)
	}

	return l.filterRows(ctx, rows, layout, target)
}

// loadExcel reads the first sheet of an XLSX workbook using the same column
// conventions as the CSV export.
func (l *Loader) loadExcel(ctx context.Context, path string, target Target) ([]domain.RawSeriesRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError("read sheet", err).WithContext("sheet", sheets[0])
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("sheet is empty", nil).WithContext("sheet", sheets[0])
	}

	layout, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	return l.filterRows(ctx, rows[1:], layout, target)
}

// columnLayout maps identifying columns and date columns to their positions.
type columnLayout struct {
	zip    int
	city   int
	state  int
	county int
	metro  int
	dates  []dateColumn
}

type dateColumn struct {
	index int
	date  time.Time
}

// mapColumns locates the identifying and date columns in the header row.
// Date columns are recognized by parsing as YYYY-MM-DD.
func mapColumns(header []string) (columnLayout, error) {
	layout := columnLayout{zip: -1, city: -1, state: -1, county: -1, metro: -1}

	for i, col := range header {
		name := strings.TrimSpace(col)
		if date, err := time.Parse(dateLayout, name); err == nil {
			layout.dates = append(layout.dates, dateColumn{index: i, date: date})
			continue
		}

		switch strings.ToLower(name) {
		case "regionname":
			layout.zip = i
		case "city":
			layout.city = i
		case "state":
			layout.state = i
		case "countyname":
			layout.county = i
		case "metro":
			layout.metro = i
		}
	}

	if layout.zip == -1 {
		return layout, apperrors.NewParsingError("missing RegionName column", nil)
	}
	if len(layout.dates) == 0 {
		return layout, apperrors.NewParsingError("no date columns found in header", nil)
	}

	// Column order in the export is already chronological; sorting keeps the
	// per-row date invariant even for reordered files.
	sort.Slice(layout.dates, func(i, j int) bool {
		return layout.dates[i].date.Before(layout.dates[j].date)
	})

	return layout, nil
}

// filterRows converts raw records to RawSeriesRow and applies the target
// filter. ZIPs requested but absent from the file are logged, not errors.
func (l *Loader) filterRows(ctx context.Context, rows [][]string, layout columnLayout, target Target) ([]domain.RawSeriesRow, error) {
	wanted := make(map[string]bool, len(target.ZipCodes))
	for _, zip := range target.ZipCodes {
		wanted[zip] = true
	}

	seen := make(map[string]bool)
	var result []domain.RawSeriesRow

	for _, record := range rows {
		if layout.zip >= len(record) {
			continue
		}

		row := domain.RawSeriesRow{
			Zip:    strings.TrimSpace(record[layout.zip]),
			City:   cell(record, layout.city),
			State:  cell(record, layout.state),
			County: cell(record, layout.county),
			Metro:  cell(record, layout.metro),
		}
		if row.Zip == "" {
			continue
		}

		if target.State != "" && !strings.EqualFold(row.State, target.State) {
			continue
		}
		if target.County != "" && !strings.EqualFold(row.County, target.County) {
			continue
		}
		if len(wanted) > 0 && !wanted[row.Zip] {
			continue
		}

		for _, dc := range layout.dates {
			raw := cell(record, dc.index)
			if raw == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			if err != nil {
				return nil, apperrors.NewParsingError("parse value cell", err).
					WithContext("zip", row.Zip).
					WithContext("date", dc.date.Format(dateLayout))
			}
			row.Observations = append(row.Observations, domain.Observation{Date: dc.date, Value: value})
		}

		seen[row.Zip] = true
		result = append(result, row)
	}

	if missing := missingZips(target.ZipCodes, seen); len(missing) > 0 {
		l.logger.WarnContext(ctx, "requested ZIPs absent from raw data",
			slog.Any("zips", missing))
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("county %q state %q: %w", target.County, target.State, apperrors.ErrDataNotFound)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Zip < result[j].Zip })

	l.logger.InfoContext(ctx, "loaded raw series rows",
		slog.Int("rows", len(result)),
		slog.String("county", target.County),
		slog.String("state", target.State))

	return result, nil
}

func cell(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func missingZips(requested []string, seen map[string]bool) []string {
	var missing []string
	for _, zip := range requested {
		if !seen[zip] {
			missing = append(missing, zip)
		}
	}
	sort.Strings(missing)
	return missing
}
