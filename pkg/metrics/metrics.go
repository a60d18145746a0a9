// Package metrics holds the Prometheus collectors for provider, resolver and
// page-fetch outcomes.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusEmpty   = "empty"
	StatusDeleted = "deleted"
	StatusSkipped = "skipped"
)

var (
	DetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "picturepolice",
			Name:      "web_detections_total",
			Help:      "Web detection requests by outcome",
		},
		[]string{"status"},
	)

	DetectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "picturepolice",
			Name:      "web_detection_duration_seconds",
			Help:      "Web detection request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	AuthorLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "picturepolice",
			Name:      "author_lookups_total",
			Help:      "Author resolution calls by outcome",
		},
		[]string{"status"},
	)

	PageFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "picturepolice",
			Name:      "provenance_fetches_total",
			Help:      "Provenance page fetches by outcome",
		},
		[]string{"status"},
	)

	EvidenceRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "picturepolice",
			Name:      "evidence_removed_total",
			Help:      "Evidence URLs removed after classification",
		},
		[]string{"reason"}, // "author" / "social"
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			DetectionsTotal,
			DetectionDuration,
			AuthorLookupsTotal,
			PageFetchesTotal,
			EvidenceRemovedTotal,
		)
	})
}
