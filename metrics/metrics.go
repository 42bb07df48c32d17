package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)

	ItemsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lostfound_items_created_total", Help: "Items posted, by type"},
		[]string{"type"},
	)
	ClaimsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "lostfound_claims_submitted_total", Help: "Claims appended to items"},
	)
	ClaimsReviewed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lostfound_claims_reviewed_total", Help: "Claim reviews that changed state, by outcome"},
		[]string{"outcome"},
	)
	ItemTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lostfound_item_transitions_total", Help: "Item status transitions, by target status"},
		[]string{"to"},
	)
	WriteConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "lostfound_write_conflicts_total", Help: "Writes rejected by the revision check"},
	)
	ConfigCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sysconfig_public_cache_lookups_total", Help: "Public config cache lookups, by result"},
		[]string{"result"},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		RequestsTotal, ReqDuration, InFlight,
		ItemsCreated, ClaimsSubmitted, ClaimsReviewed, ItemTransitions, WriteConflicts,
		ConfigCacheLookups,
	)
}
