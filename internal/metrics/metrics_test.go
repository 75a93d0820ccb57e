package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordUpload("csv", nil)
	m.RecordUpload("csv", errors.New("bad"))
	m.RecordChart("line", 2, nil)
	m.RecordExport("png", "manuscript", 1, nil)
	m.ObserveRender("png", 150*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues("csv", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues("csv", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartsTotal.WithLabelValues("line", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsTotal.WithLabelValues("png", "manuscript", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SeriesSkippedTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RenderDuration))
}

func TestRecorders_BoundedLabels(t *testing.T) {
	m := New()

	m.RecordUpload("txt", errors.New("bad"))
	m.RecordUpload("exe", errors.New("bad"))
	m.RecordChart("zzz1", 0, errors.New("bad"))
	m.RecordChart("zzz2", 0, errors.New("bad"))
	m.RecordExport("gif", "draft", 0, errors.New("bad"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues("unsupported", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.UploadsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChartsTotal.WithLabelValues("invalid", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ChartsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsTotal.WithLabelValues("unsupported", "draft", "error")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.RenderDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordUpload("csv", nil)
		m.RecordChart("bar", 0, nil)
		m.RecordExport("svg", "draft", 0, nil)
		m.ObserveRender("svg", time.Second)
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/color_palettes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/color_palettes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/color_palettes", "200")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "scientiflow_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestMiddleware_UnmatchedRoutes(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/wp-admin", "/.env", "/etc/passwd"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("PROPFIND", "/health", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("OTHER", "unmatched", "405")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestsTotal))
}
