package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricNameBuildInfo              = "doublezero_activator_build_info"
	MetricNameErrors                 = "doublezero_activator_errors_total"
	MetricNameDuplicateEventSkipped  = "doublezero_activator_duplicate_event_skipped_total"
	MetricNameResourceExhausted      = "doublezero_activator_resource_exhausted_total"
	MetricNameActivationsTotal       = "doublezero_activator_activations_total"
	MetricNameBootstrapDurationSecs  = "doublezero_activator_bootstrap_duration_seconds"

	LabelVersion    = "version"
	LabelCommit     = "commit"
	LabelDate       = "date"
	LabelErrorType  = "error_type"
	LabelEntityType = "entity_type"
	LabelResource   = "resource_type"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameBuildInfo,
			Help: "Build information of the activator",
		},
		[]string{LabelVersion, LabelCommit, LabelDate},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameErrors,
			Help: "Number of errors encountered while processing events",
		},
		[]string{LabelErrorType},
	)

	DuplicateEventSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDuplicateEventSkipped,
			Help: "Number of account updates skipped because an activation for the same pubkey was already in flight",
		},
		[]string{LabelEntityType},
	)

	ResourceExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameResourceExhausted,
			Help: "Number of activations that failed because a bitmap allocator had no free capacity",
		},
		[]string{LabelResource},
	)

	ActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameActivationsTotal,
			Help: "Number of entities successfully transitioned out of Pending",
		},
		[]string{LabelEntityType},
	)

	BootstrapDurationSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameBootstrapDurationSecs,
			Help: "Wall-clock time the last bootstrap snapshot rebuild took",
		},
	)
)
