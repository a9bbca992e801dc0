package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	ObservationsCreated prometheus.Counter
	NotesImported       prometheus.Counter
	ImportErrors        prometheus.Counter

	// Import batch metrics.
	ImportBatchSize     prometheus.Histogram
	ImportBatchDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeDuration *prometheus.HistogramVec // labels: method={forward,reverse}
	GeocodeEnabled  prometheus.Gauge

	EventsPublished prometheus.Counter

	// Notification poller metrics.
	NotificationsUnread prometheus.Gauge
	PollerRunning       prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ObservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecocast",
			Name:      "observations_created_total",
			Help:      "Total observations accepted through the API.",
		}),
		NotesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecocast",
			Name:      "notes_imported_total",
			Help:      "Total field notes created by the CSV importer.",
		}),
		ImportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecocast",
			Name:      "import_errors_total",
			Help:      "Total rows skipped during import.",
		}),
		ImportBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecocast",
			Name:      "import_batch_size",
			Help:      "Number of rows per import batch.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		ImportBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecocast",
			Name:      "import_batch_duration_seconds",
			Help:      "Duration of a complete transform-and-load batch cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecocast",
			Name:      "geocode_requests_total",
			Help:      "Geocoding requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecocast",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ecocast",
			Name:      "geocode_duration_seconds",
			Help:      "LLM geocoding request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecocast",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecocast",
			Name:      "events_published_total",
			Help:      "Total observation events written to Kafka.",
		}),
		NotificationsUnread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecocast",
			Name:      "notifications_unread",
			Help:      "Unread notifications seen by the last poll.",
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecocast",
			Name:      "notification_poller_running",
			Help:      "1 when the notification poller is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.ObservationsCreated,
		m.NotesImported,
		m.ImportErrors,
		m.ImportBatchSize,
		m.ImportBatchDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeDuration,
		m.GeocodeEnabled,
		m.EventsPublished,
		m.NotificationsUnread,
		m.PollerRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so multiple
// tests can build their own set without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ObservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecocast", Name: "observations_created_total"}),
		NotesImported:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecocast", Name: "notes_imported_total"}),
		ImportErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecocast", Name: "import_errors_total"}),
		ImportBatchSize:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ecocast", Name: "import_batch_size"}),
		ImportBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ecocast", Name: "import_batch_duration_seconds"}),
		GeocodeRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecocast", Name: "geocode_requests_total"}, []string{"method", "outcome"}),
		GeocodeCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecocast", Name: "geocode_cache_total"}, []string{"method", "result"}),
		GeocodeDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "ecocast", Name: "geocode_duration_seconds"}, []string{"method"}),
		GeocodeEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ecocast", Name: "geocode_enabled"}),
		EventsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecocast", Name: "events_published_total"}),
		NotificationsUnread: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ecocast", Name: "notifications_unread"}),
		PollerRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ecocast", Name: "notification_poller_running"}),
	}
}
