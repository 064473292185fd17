package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "unchive"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec

	// Ingestion metrics
	ArchivesTotal    *prometheus.CounterVec
	IngestDuration   prometheus.Histogram
	ScreensTotal     prometheus.Counter
	ComponentsTotal  *prometheus.CounterVec
	ComponentsFaulty prometheus.Counter
	CatalogFetches   *prometheus.CounterVec
	ProjectsStored   prometheus.Gauge
	AssetsPublished  prometheus.Gauge

	// Snapshot for JSON API - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the health endpoint
type Snapshot struct {
	Requests         int64   `json:"requests"`
	Errors           int64   `json:"errors"`
	Archives         int64   `json:"archives"`
	ArchivesFailed   int64   `json:"archivesFailed"`
	Components       int64   `json:"components"`
	FaultyComponents int64   `json:"faultyComponents"`
	AvgIngestSeconds float64 `json:"avgIngestSeconds"`

	ingestSeconds float64
}

// NewMetrics registers the collectors with reg. A nil reg uses the
// default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000, 100000000},
			},
			[]string{"method", "path"},
		),

		ArchivesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_archives_total",
				Help:      "Archives ingested by outcome",
			},
			[]string{"status"},
		),
		IngestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Archive ingestion duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		ScreensTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_screens_total",
				Help:      "Screens built",
			},
		),
		ComponentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_components_total",
				Help:      "Components built by type origin",
			},
			[]string{"origin"},
		),
		ComponentsFaulty: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_components_faulty_total",
				Help:      "Components that could not be resolved",
			},
		),
		CatalogFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_fetches_total",
				Help:      "Descriptor catalog loads by outcome",
			},
			[]string{"status"},
		),
		ProjectsStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "projects_stored",
				Help:      "Projects held in the project store",
			},
		),
		AssetsPublished: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "assets_published",
				Help:      "Asset references currently published",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))

	m.mu.Lock()
	m.snapshot.Requests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.Errors++
	}
	m.mu.Unlock()
}

// RecordIngest records one finished ingestion
func (m *Metrics) RecordIngest(status string, duration time.Duration) {
	m.ArchivesTotal.WithLabelValues(status).Inc()
	m.IngestDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Archives++
	if status != "ok" {
		m.snapshot.ArchivesFailed++
	}
	m.snapshot.ingestSeconds += duration.Seconds()
	m.mu.Unlock()
}

// RecordScreen counts a built screen
func (m *Metrics) RecordScreen() {
	m.ScreensTotal.Inc()
}

// RecordComponent counts a built component
func (m *Metrics) RecordComponent(origin string, faulty bool) {
	m.ComponentsTotal.WithLabelValues(origin).Inc()
	if faulty {
		m.ComponentsFaulty.Inc()
	}

	m.mu.Lock()
	m.snapshot.Components++
	if faulty {
		m.snapshot.FaultyComponents++
	}
	m.mu.Unlock()
}

// RecordCatalogFetch counts a catalog load attempt
func (m *Metrics) RecordCatalogFetch(status string) {
	m.CatalogFetches.WithLabelValues(status).Inc()
}

// SetProjectsStored sets the number of stored projects
func (m *Metrics) SetProjectsStored(n int) {
	m.ProjectsStored.Set(float64(n))
}

// SetAssetsPublished sets the number of published asset references
func (m *Metrics) SetAssetsPublished(n int) {
	m.AssetsPublished.Set(float64(n))
}

// Snapshot returns current values for the JSON API
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.Archives > 0 {
		s.AvgIngestSeconds = s.ingestSeconds / float64(s.Archives)
	}
	return s
}
