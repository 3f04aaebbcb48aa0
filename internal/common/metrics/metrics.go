// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_scans_total",
			Help: "Total number of duplicate scans by outcome",
		},
		[]string{"status"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "match_scan_duration_seconds",
			Help: "Duration of a full duplicate scan in seconds",
		},
	)

	PairsCompared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_pairs_compared_total",
			Help: "Total number of pending/reference pairs scored",
		},
	)

	CandidatesKept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_candidates_kept_total",
			Help: "Total number of candidates that crossed the threshold",
		},
	)

	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_records_skipped_total",
			Help: "Total number of records excluded for invalid birth dates",
		},
	)

	AddressCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "address_cache_lookups_total",
			Help: "Address display-name cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)
)
