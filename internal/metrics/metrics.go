// Package metrics exposes Prometheus counters and histograms for the chart
// pipeline and the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scientiflow"

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UploadsTotal        *prometheus.CounterVec
	ChartsTotal         *prometheus.CounterVec
	ExportsTotal        *prometheus.CounterVec
	RenderDuration      *prometheus.HistogramVec
	SeriesSkippedTotal  prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of parsed uploads by file format and outcome.",
		}, []string{"format", "status"}),
		ChartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_generated_total",
			Help:      "Total number of chart previews by chart type and outcome.",
		}, []string{"chart_type", "status"}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of chart exports by format, quality preset and outcome.",
		}, []string{"format", "quality", "status"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering an export.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"format"}),
		SeriesSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_skipped_total",
			Help:      "Requested columns left out of a chart because they held no numeric data.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.UploadsTotal,
		m.ChartsTotal,
		m.ExportsTotal,
		m.RenderDuration,
		m.SeriesSkippedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Label values outside these sets collapse to a fixed label so client input
// cannot grow the number of series.
var (
	uploadFormats = map[string]bool{"csv": true, "json": true, "xlsx": true}
	chartTypes    = map[string]bool{"line": true, "scatter": true, "bar": true}
	exportFormats = map[string]bool{"png": true, "svg": true, "pdf": true}
	httpMethods   = map[string]bool{
		http.MethodGet: true, http.MethodHead: true, http.MethodPost: true, http.MethodPut: true,
		http.MethodPatch: true, http.MethodDelete: true, http.MethodOptions: true,
	}
)

const (
	unsupportedLabel = "unsupported"
	invalidLabel     = "invalid"
	unmatchedRoute   = "unmatched"
	otherMethod      = "OTHER"
)

func bounded(v string, known map[string]bool, fallback string) string {
	if known[v] {
		return v
	}
	return fallback
}

// RecordUpload counts one parse attempt.
func (m *Metrics) RecordUpload(format string, err error) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(bounded(format, uploadFormats, unsupportedLabel), status(err)).Inc()
}

// RecordChart counts one chart preview.
func (m *Metrics) RecordChart(chartType string, skipped int, err error) {
	if m == nil {
		return
	}
	m.ChartsTotal.WithLabelValues(bounded(chartType, chartTypes, invalidLabel), status(err)).Inc()
	m.SeriesSkippedTotal.Add(float64(skipped))
}

// RecordExport counts one export attempt.
func (m *Metrics) RecordExport(format, quality string, skipped int, err error) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(bounded(format, exportFormats, unsupportedLabel), quality, status(err)).Inc()
	m.SeriesSkippedTotal.Add(float64(skipped))
}

// ObserveRender records how long one render took.
func (m *Metrics) ObserveRender(format string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RenderDuration.WithLabelValues(bounded(format, exportFormats, unsupportedLabel)).Observe(duration.Seconds())
}

// Middleware records request counts and latencies labelled by chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		method := bounded(r.Method, httpMethods, otherMethod)
		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}
