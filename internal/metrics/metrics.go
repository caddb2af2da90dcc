package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	StoreOperations     *prometheus.CounterVec
	StoreSeconds        *prometheus.HistogramVec
	ProviderErrors      *prometheus.CounterVec
	ProviderSeconds     *prometheus.HistogramVec
	CacheLookups        *prometheus.CounterVec
	ActiveSubscriptions prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		StoreOperations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "itinera_store_operations_total",
			Help: "Total number of document store operations.",
		}, []string{"backend", "operation", "status"}),
		StoreSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "itinera_store_operation_duration_seconds",
			Help:    "Duration of document store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		ProviderErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "itinera_places_provider_errors_total",
			Help: "Total number of errors received from the places provider API.",
		}, []string{"provider", "operation"}),
		ProviderSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "itinera_places_provider_request_duration_seconds",
			Help:    "Duration of requests to the places provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "itinera_place_details_cache_lookups_total",
			Help: "Place details cache lookups by result.",
		}, []string{"result"}),
		ActiveSubscriptions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "itinera_live_subscriptions",
			Help: "Current number of live itinerary subscriptions.",
		}),
	}
}
