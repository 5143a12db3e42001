// Command forecast-report runs the full pipeline once: load the raw ZHVI
// file, restrict it to the target county, build the yearly series, project
// it forward and write the three report tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"zhvipulse/internal/config"
	"zhvipulse/internal/exporter"
	"zhvipulse/internal/infrastructure"
	"zhvipulse/internal/pipeline"
	"zhvipulse/internal/storage"
	"zhvipulse/internal/zhvi"
)

func main() {
	rawFile := flag.String("raw", "", "raw ZHVI file (defaults to the configured raw file)")
	outputDir := flag.String("out", "", "output directory for report tables (defaults to data/processed)")
	strategyName := flag.String("strategy", "", "forecast strategy: flat or linear (defaults to config)")
	flag.Parse()

	// .env is optional; missing file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(cfg.Logging)

	if err := cfg.Paths.EnsureDirectories(); err != nil {
		logger.Error("failed to prepare directories", "error", err)
		os.Exit(1)
	}

	if *rawFile == "" {
		*rawFile = cfg.Paths.RawPath(cfg.Pipeline.RawFile)
	}
	if *outputDir == "" {
		*outputDir = cfg.Paths.ProcessedDir
	}
	if *strategyName == "" {
		*strategyName = cfg.Pipeline.Strategy
	}

	ctx := context.Background()

	logger.Info("loading raw ZHVI data",
		"path", *rawFile,
		"county", cfg.Pipeline.County,
		"state", cfg.Pipeline.State)

	loader := zhvi.NewLoader(logger)
	rows, err := loader.LoadFile(ctx, *rawFile, zhvi.Target{
		State:    cfg.Pipeline.State,
		County:   cfg.Pipeline.County,
		ZipCodes: cfg.Pipeline.ZipCodes,
	})
	if err != nil {
		logger.Error("failed to load raw data", "error", err, "path", *rawFile)
		os.Exit(1)
	}

	strategy, err := pipeline.NewStrategy(*strategyName)
	if err != nil {
		logger.Error("invalid forecast strategy", "error", err)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(strategy, cfg.Pipeline.ForecastYears, logger)
	result, err := runner.Run(ctx, rows)
	if err != nil {
		logger.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(*outputDir, logger)
	if err := writer.WriteReport(result); err != nil {
		logger.Error("failed to write report tables", "error", err)
		os.Exit(1)
	}

	if dsn := cfg.Pipeline.PostgresDSN; dsn != "" {
		if err := saveToPostgres(ctx, dsn, result, logger); err != nil {
			logger.Error("failed to save result to Postgres", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("forecast report generated",
		"run_id", result.RunID,
		"zips", result.ZipCount,
		"skipped", len(result.Skipped),
		"output_dir", *outputDir)

	printSummary(result)
}

func saveToPostgres(ctx context.Context, dsn string, result *pipeline.Result, logger *slog.Logger) error {
	db, err := storage.Connect(dsn, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	return db.SaveResult(ctx, result)
}

// printSummary prints the KPI table and skip report to stdout.
func printSummary(result *pipeline.Result) {
	fmt.Println("\n=== FORECAST SUMMARY ===")
	fmt.Println("Zip   | Current     | Forecast 5Yr | Growth % | CAGR %")
	fmt.Println("------|-------------|--------------|----------|-------")
	for _, kpi := range result.Report.Summary {
		fmt.Printf("%-5s | %11.0f | %12.0f | %8.2f | %6.2f\n",
			kpi.Zip, kpi.CurrentValue, kpi.Forecast5Yr, kpi.GrowthPct5Yr, kpi.CAGR)
	}

	if len(result.Skipped) > 0 {
		fmt.Println("\n=== SKIPPED ZIPS ===")
		for _, skip := range result.Skipped {
			fmt.Printf("%-5s | %s\n", skip.Zip, skip.Reason)
		}
	}
}
