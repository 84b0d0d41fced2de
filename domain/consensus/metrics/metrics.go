// Package metrics holds the in-process prometheus instrumentation points
// for pipeline stage throughput and dependency-manager in-flight task
// counts. No HTTP exporter is wired here -- scraping transport is out of
// this core's scope -- but the counters/gauges themselves are real and
// registered against the default registry so an embedder can expose them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BlocksProcessed counts blocks that finished a pipeline stage,
	// labeled by stage name and outcome ("accepted"/"rejected").
	BlocksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghostnoded_blocks_processed_total",
			Help: "Blocks that completed a pipeline stage, by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)

	// PipelineInFlight gauges the number of blocks currently registered
	// with a stage's dependency manager but not yet released.
	PipelineInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ghostnoded_pipeline_in_flight",
			Help: "Blocks registered with a pipeline stage's dependency manager but not yet settled.",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(BlocksProcessed, PipelineInFlight)
}
