package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medias_display"

// Metrics holds the Prometheus instruments of the service. Each instance owns
// its registry so tests can build as many as they need.
type Metrics struct {
	reg *prometheus.Registry

	registryEntries    prometheus.Gauge
	registryAllocated  prometheus.Counter
	registryRevoked    prometheus.Counter
	registryStale      prometheus.Counter
	fetchDuration      *prometheus.HistogramVec
	thumbnailFallbacks *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

var (
	_ port.RegistryRecorder = (*Metrics)(nil)
	_ port.FetchRecorder    = (*Metrics)(nil)
)

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		registryEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_entries",
			Help:      "Number of live object URLs in the registry.",
		}),
		registryAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_allocations_total",
			Help:      "Total number of object URLs allocated.",
		}),
		registryRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_revocations_total",
			Help:      "Total number of object URLs revoked.",
		}),
		registryStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_stale_reacquires_total",
			Help:      "Re-acquisitions whose payload differed from the one the URL was created from.",
		}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of media fetches from object storage.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"size", "outcome"}),
		thumbnailFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_fallbacks_total",
			Help:      "Fetches served from the original because the thumbnail was missing.",
		}, []string{"size"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.registryEntries,
		m.registryAllocated,
		m.registryRevoked,
		m.registryStale,
		m.fetchDuration,
		m.thumbnailFallbacks,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// RegisterGauge exposes a value computed at scrape time.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) error {
	return m.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

func (m *Metrics) EntryAllocated() {
	m.registryAllocated.Inc()
	m.registryEntries.Inc()
}

func (m *Metrics) EntryRevoked() {
	m.registryRevoked.Inc()
	m.registryEntries.Dec()
}

func (m *Metrics) StaleReacquire() {
	m.registryStale.Inc()
}

func (m *Metrics) FetchCompleted(size model.Size, outcome string, elapsed time.Duration) {
	m.fetchDuration.WithLabelValues(size.String(), outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) ThumbnailFallback(size model.Size) {
	m.thumbnailFallbacks.WithLabelValues(size.String()).Inc()
}

// Middleware records one sample per request, labelled by the matched chi
// route pattern so that path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
