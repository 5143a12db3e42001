package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "zhvipulse/internal/errors"
	"zhvipulse/internal/metrics"
	"zhvipulse/pkg/contracts/domain"
)

// Runner drives the full pipeline over a set of raw rows. ZIPs are processed
// independently; one ZIP failing never blocks KPI generation for the rest.
type Runner struct {
	strategy Strategy
	horizon  int
	logger   *slog.Logger
}

// NewRunner creates a runner with the given projection strategy and horizon.
func NewRunner(strategy Strategy, horizon int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		strategy: strategy,
		horizon:  horizon,
		logger:   logger.With(slog.String("component", "pipeline_runner")),
	}
}

// Result is the outcome of one pipeline run: the report tables plus the
// per-ZIP skip record. Every skipped ZIP is listed with its error kind;
// nothing is dropped silently.
type Result struct {
	RunID       string              `json:"run_id"`
	Strategy    string              `json:"strategy"`
	Horizon     int                 `json:"horizon"`
	GeneratedAt time.Time           `json:"generated_at"`
	Report      Report              `json:"-"`
	Skipped     []domain.SkippedZip `json:"skipped"`
	ZipCount    int                 `json:"zip_count"`
}

// Run executes reshape, forecast, KPI and assembly for every row.
func (r *Runner) Run(ctx context.Context, rows []domain.RawSeriesRow) (*Result, error) {
	start := time.Now()

	if len(rows) == 0 {
		return nil, apperrors.ErrDataNotFound
	}

	result := &Result{
		RunID:       uuid.New().String(),
		Strategy:    r.strategy.Name(),
		Horizon:     r.horizon,
		GeneratedAt: start.UTC(),
	}

	r.logger.InfoContext(ctx, "starting pipeline run",
		slog.String("run_id", result.RunID),
		slog.String("strategy", result.Strategy),
		slog.Int("horizon", r.horizon),
		slog.Int("rows", len(rows)))

	metrics.RowsLoaded.Add(float64(len(rows)))

	sorted := make([]domain.RawSeriesRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Zip < sorted[j].Zip })

	for _, row := range sorted {
		if err := r.processZip(ctx, row, result); err != nil {
			kind := apperrors.Kind(err)
			result.Skipped = append(result.Skipped, domain.SkippedZip{
				Zip:    row.Zip,
				Reason: kind,
				Detail: err.Error(),
			})
			metrics.ZipsSkipped.WithLabelValues(kind).Inc()
			r.logger.WarnContext(ctx, "skipping ZIP",
				slog.String("zip", row.Zip),
				slog.String("reason", kind),
				slog.String("error", err.Error()))
			continue
		}
		result.ZipCount++
		metrics.ZipsProcessed.Inc()
	}

	if result.ZipCount == 0 {
		return nil, fmt.Errorf("all %d ZIPs failed: %w", len(sorted), apperrors.ErrDataNotFound)
	}

	result.Report.finalize()

	duration := time.Since(start)
	metrics.RunDuration.Observe(duration.Seconds())
	r.logger.InfoContext(ctx, "pipeline run completed",
		slog.String("run_id", result.RunID),
		slog.Int("zips", result.ZipCount),
		slog.Int("skipped", len(result.Skipped)),
		slog.Duration("duration", duration))

	return result, nil
}

// processZip runs the per-ZIP stages and appends to the report tables.
func (r *Runner) processZip(ctx context.Context, row domain.RawSeriesRow, result *Result) error {
	yearly, err := ReshapeRow(row)
	if err != nil {
		return err
	}

	forecast, err := r.strategy.Project(yearly, r.horizon)
	if err != nil {
		return fmt.Errorf("project zip %s: %w", row.Zip, err)
	}

	kpi, err := BuildKPI(row.Zip, yearly, forecast)
	if err != nil {
		return err
	}

	hist, combined := assembleZip(row.Zip, yearly, forecast)
	result.Report.YearlyHistory = append(result.Report.YearlyHistory, hist...)
	result.Report.Combined = append(result.Report.Combined, combined...)
	result.Report.Summary = append(result.Report.Summary, kpi)

	return nil
}
