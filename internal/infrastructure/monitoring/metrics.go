package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/discovery/internal/application/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Discovery metrics
	pipelineCache    *prometheus.CounterVec
	imagesResolved   *prometheus.CounterVec
	imageRetries     prometheus.Histogram
	probeDuration    *prometheus.HistogramVec
	catalogueReloads *prometheus.CounterVec
	catalogueSize    prometheus.Gauge

	uptimeSeconds prometheus.Counter
}

// NewMetricsCollector creates a collector on its own registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger:   logger,
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		pipelineCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_pipeline_cache_total",
				Help: "Filter pipeline memoization lookups",
			},
			[]string{"result"},
		),
		imagesResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_images_resolved_total",
				Help: "Settled image resolutions by final status",
			},
			[]string{"status"},
		),
		imageRetries: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "discovery_image_retries",
				Help:    "Replacement attempts consumed per settled image",
				Buckets: []float64{0, 1, 2, 3, 5, 8},
			},
		),
		probeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "discovery_image_host_duration_seconds",
				Help:    "Image probe latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"outcome"},
		),
		catalogueReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_catalogue_reloads_total",
				Help: "Catalogue hot reloads",
			},
			[]string{"result"},
		),
		catalogueSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "discovery_catalogue_recipes",
				Help: "Number of recipes in the active catalogue",
			},
		),

		uptimeSeconds: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "uptime_seconds_total",
				Help: "Total uptime in seconds",
			},
		),
	}
}

// HTTPMiddleware records request count and latency per route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// PipelineCacheHit implements filter.CacheObserver
func (m *MetricsCollector) PipelineCacheHit() {
	m.pipelineCache.WithLabelValues("hit").Inc()
}

// PipelineCacheMiss implements filter.CacheObserver
func (m *MetricsCollector) PipelineCacheMiss() {
	m.pipelineCache.WithLabelValues("miss").Inc()
}

// ImageResolved implements imaging.Observer
func (m *MetricsCollector) ImageResolved(status imaging.Status, retries int) {
	m.imagesResolved.WithLabelValues(status.String()).Inc()
	m.imageRetries.Observe(float64(retries))
}

// ProbeObserved implements imageprobe.LatencyObserver
func (m *MetricsCollector) ProbeObserved(outcome string, elapsed time.Duration) {
	m.probeDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// CatalogueLoaded records a successful (re)load
func (m *MetricsCollector) CatalogueLoaded(recipes int) {
	m.catalogueReloads.WithLabelValues("success").Inc()
	m.catalogueSize.Set(float64(recipes))
}

// CatalogueReloadFailed records a rejected catalogue file
func (m *MetricsCollector) CatalogueReloadFailed() {
	m.catalogueReloads.WithLabelValues("failure").Inc()
}

// StartUptimeCounter starts the uptime counter
func (m *MetricsCollector) StartUptimeCounter(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.uptimeSeconds.Inc()
		}
	}
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
