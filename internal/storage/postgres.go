// Package storage persists pipeline results to Postgres. The sink is
// optional; runs without a configured DSN write CSV artifacts only.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"zhvipulse/internal/pipeline"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Connect establishes a connection to the database
func Connect(dsn string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &DB{DB: db, logger: logger.With(slog.String("component", "storage"))}, nil
}

// EnsureSchema creates the result tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS yearly_history (
		zip TEXT NOT NULL,
		year INT NOT NULL,
		median_price DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (zip, year)
	)`,
	`CREATE TABLE IF NOT EXISTS forecast_summary (
		zip TEXT PRIMARY KEY,
		current_value DOUBLE PRECISION NOT NULL,
		forecast_5yr DOUBLE PRECISION NOT NULL,
		growth_pct_5yr DOUBLE PRECISION NOT NULL,
		cagr DOUBLE PRECISION NOT NULL,
		run_id TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS combined_series (
		zip TEXT NOT NULL,
		year INT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		is_forecast BOOLEAN NOT NULL,
		PRIMARY KEY (zip, year, is_forecast)
	)`,
}

// SaveResult replaces the stored tables with the given run's output inside
// one transaction, so readers never observe a half-written run.
func (db *DB) SaveResult(ctx context.Context, result *pipeline.Result) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"yearly_history", "forecast_summary", "combined_series"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range result.Report.YearlyHistory {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO yearly_history (zip, year, median_price) VALUES ($1, $2, $3)`,
			p.Zip, p.Year, p.Price); err != nil {
			return fmt.Errorf("insert yearly history for %s: %w", p.Zip, err)
		}
	}

	for _, kpi := range result.Report.Summary {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO forecast_summary (zip, current_value, forecast_5yr, growth_pct_5yr, cagr, run_id)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			kpi.Zip, kpi.CurrentValue, kpi.Forecast5Yr, kpi.GrowthPct5Yr, kpi.CAGR, result.RunID); err != nil {
			return fmt.Errorf("insert summary for %s: %w", kpi.Zip, err)
		}
	}

	for _, p := range result.Report.Combined {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO combined_series (zip, year, price, is_forecast) VALUES ($1, $2, $3, $4)`,
			p.Zip, p.Year, p.Price, p.IsForecast()); err != nil {
			return fmt.Errorf("insert series point for %s: %w", p.Zip, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.InfoContext(ctx, "saved pipeline result",
		slog.String("run_id", result.RunID),
		slog.Int("zips", result.ZipCount))

	return nil
}
