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
	CalendarSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "calendar_sync_total", Help: "Calendar sync attempts by outcome"},
		[]string{"outcome"}, // ok | skipped | failed
	)
	ExtractionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "nlp_extraction_total", Help: "Natural-language extraction requests by outcome"},
		[]string{"outcome"}, // ok | client_error | upstream_error
	)
)

func MustRegister() {
	prometheus.MustRegister(RequestsTotal, ReqDuration, CalendarSyncTotal, ExtractionTotal)
}
