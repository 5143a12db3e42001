package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"zhvipulse/internal/pipeline"
)

// Artifact file names. The combined series and summary names match what the
// dashboard consumes; renaming them is a breaking change for it.
const (
	YearlyHistoryFile   = "yearly_history.csv"
	ForecastSummaryFile = "forecast_summary.csv"
	CombinedSeriesFile  = "full_timeseries_with_forecast.csv"
	RunManifestFile     = "run_manifest.json"
)

// WriteReport writes the three report tables and the run manifest into the
// writer's base directory. Table content is deterministic for a given input;
// only the manifest carries run-specific fields (ID, timestamp).
func (w *CSVWriter) WriteReport(result *pipeline.Result) error {
	if err := w.writeYearlyHistory(result); err != nil {
		return fmt.Errorf("write yearly history: %w", err)
	}
	if err := w.writeForecastSummary(result); err != nil {
		return fmt.Errorf("write forecast summary: %w", err)
	}
	if err := w.writeCombinedSeries(result); err != nil {
		return fmt.Errorf("write combined series: %w", err)
	}
	if err := w.writeRunManifest(result); err != nil {
		return fmt.Errorf("write run manifest: %w", err)
	}
	return nil
}

func (w *CSVWriter) writeYearlyHistory(result *pipeline.Result) error {
	records := make([][]string, 0, len(result.Report.YearlyHistory))
	for _, p := range result.Report.YearlyHistory {
		records = append(records, []string{
			p.Zip,
			strconv.Itoa(p.Year),
			formatFloat(p.Price, 2),
		})
	}
	return w.WriteCSV(YearlyHistoryFile, WriteOptions{
		Headers: []string{"Zip", "Year", "MedianPrice"},
		Records: records,
	})
}

func (w *CSVWriter) writeForecastSummary(result *pipeline.Result) error {
	records := make([][]string, 0, len(result.Report.Summary))
	for _, kpi := range result.Report.Summary {
		records = append(records, []string{
			kpi.Zip,
			formatFloat(kpi.CurrentValue, 2),
			formatFloat(kpi.Forecast5Yr, 2),
			formatFloat(kpi.GrowthPct5Yr, 2),
			formatFloat(kpi.CAGR, 4),
		})
	}
	return w.WriteCSV(ForecastSummaryFile, WriteOptions{
		Headers: []string{"Zip", "CurrentValue", "Forecast5Yr", "GrowthPct5Yr", "CAGR"},
		Records: records,
	})
}

func (w *CSVWriter) writeCombinedSeries(result *pipeline.Result) error {
	records := make([][]string, 0, len(result.Report.Combined))
	for _, p := range result.Report.Combined {
		records = append(records, []string{
			p.Zip,
			strconv.Itoa(p.Year),
			formatFloat(p.Price, 2),
			string(p.Type),
		})
	}
	return w.WriteCSV(CombinedSeriesFile, WriteOptions{
		Headers: []string{"Zip", "Year", "Price", "Type"},
		Records: records,
	})
}

// writeRunManifest writes the JSON sidecar describing the run: ID, strategy,
// horizon, counts and every skipped ZIP with its reason.
func (w *CSVWriter) writeRunManifest(result *pipeline.Result) error {
	fullPath := w.resolvePath(RunManifestFile)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
