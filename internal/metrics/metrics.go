// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline. Counters register on the default registry; the HTTP layer
// serves them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollCycles counts completed poll cycles partitioned by outcome.
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocking_poll_cycles_total",
			Help: "Total number of poll cycles run, by outcome",
		},
		[]string{"status"},
	)

	// EventsParsed counts events that survived extraction and
	// normalization, before store-level dedup.
	EventsParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stocking_events_parsed_total",
			Help: "Total number of events parsed from agency sources",
		},
	)

	// EventsInserted counts events that were genuinely new in the store.
	EventsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stocking_events_inserted_total",
			Help: "Total number of newly inserted stocking events",
		},
	)

	// NotificationsSent counts push messages handed to the gateway.
	NotificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stocking_notifications_sent_total",
			Help: "Total number of push notifications dispatched",
		},
	)

	// PollDuration observes wall time per poll cycle.
	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stocking_poll_duration_seconds",
			Help:    "Poll cycle latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
