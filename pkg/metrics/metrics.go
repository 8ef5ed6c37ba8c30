// Package metrics holds the Prometheus collectors of the connections service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "operion_connections"
)

var (
	CoordinatorEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coordinator_events_total",
		Help:      "Count of connection events processed by draft coordinators.",
	}, []string{"event_type"})

	DraftsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "drafts_open",
		Help:      "Number of connection drafts currently open.",
	})

	DraftSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draft_saves_total",
		Help:      "Count of draft save attempts.",
	}, []string{"status"})

	ListQueryResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "list_query_results",
		Help:      "Number of items returned by a list query.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"resource"})
)

// Save outcomes.
const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)
