// Package metrics exposes the Prometheus collectors for the forecast
// pipeline and the read API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsLoaded counts raw region rows accepted by the loader filter.
	RowsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zhvipulse",
		Name:      "raw_rows_loaded_total",
		Help:      "Raw ZHVI rows that matched the target region filter.",
	})

	// ZipsProcessed counts ZIP codes that produced a full KPI record.
	ZipsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zhvipulse",
		Name:      "pipeline_zips_processed_total",
		Help:      "ZIP codes successfully carried through the full pipeline.",
	})

	// ZipsSkipped counts ZIP codes dropped by the pipeline, by error kind.
	ZipsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zhvipulse",
		Name:      "pipeline_zips_skipped_total",
		Help:      "ZIP codes skipped by the pipeline, labelled by error kind.",
	}, []string{"reason"})

	// RunDuration observes end-to-end pipeline run time.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zhvipulse",
		Name:      "pipeline_run_duration_seconds",
		Help:      "Wall-clock duration of a full pipeline run.",
		Buckets:   prometheus.DefBuckets,
	})
)
