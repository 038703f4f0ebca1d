package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric pulls the first metric out of a collector whose labels contain
// every key/value pair in want.
func findMetric(t *testing.T, c prometheus.Collector, want map[string]string) *dto.Metric {
	if t != nil {
		t.Helper()
	}
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}

		matched := 0
		for _, lp := range d.GetLabel() {
			if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
				matched++
			}
		}
		if matched == len(want) {
			return d
		}
	}
	return nil
}

// metricsRouter mounts the handler behind chi so RoutePattern resolves.
func metricsRouter(serviceName string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(serviceName))
	r.Get("/api/v1/products", handler)
	return r
}

func TestPrometheusMetrics_CountsRequests(t *testing.T) {
	router := metricsRouter("agromarket-count", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	m := findMetric(t, httpRequestsTotal, map[string]string{
		"service": "agromarket-count", "method": "GET", "path": "/api/v1/products", "status": "200",
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(3))
}

func TestPrometheusMetrics_ObservesDuration(t *testing.T) {
	router := metricsRouter("agromarket-duration", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	m := findMetric(t, httpRequestDuration, map[string]string{
		"service": "agromarket-duration", "status": "201",
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}

func TestPrometheusMetrics_TracksInFlight(t *testing.T) {
	inFlightSeen := float64(-1)
	router := metricsRouter("agromarket-inflight", func(w http.ResponseWriter, r *http.Request) {
		if m := findMetric(nil, httpRequestsInFlight, map[string]string{"service": "agromarket-inflight"}); m != nil {
			inFlightSeen = m.GetGauge().GetValue()
		}
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	assert.GreaterOrEqual(t, inFlightSeen, float64(1))
}

func TestPrometheusMetrics_ImplicitStatusIs200(t *testing.T) {
	router := metricsRouter("agromarket-implicit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	m := findMetric(t, httpRequestsTotal, map[string]string{
		"service": "agromarket-implicit", "status": "200",
	})
	require.NotNil(t, m)
}

// --- status writer passthrough ---

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() {
	f.flushed = true
}

type hijackRecorder struct {
	http.ResponseWriter
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

// bareWriter implements only the base ResponseWriter interface.
type bareWriter struct {
	header http.Header
}

func (b *bareWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }

func (b *bareWriter) WriteHeader(int) {}

func TestMetricsResponseWriter_FlushPassthrough(t *testing.T) {
	inner := &flushRecorder{ResponseWriter: httptest.NewRecorder()}
	rw := &metricsResponseWriter{ResponseWriter: inner, statusCode: http.StatusOK}

	rw.Flush()
	assert.True(t, inner.flushed)

	// Wrapping a writer without Flush support must not panic.
	(&metricsResponseWriter{ResponseWriter: &bareWriter{}}).Flush()
}

func TestMetricsResponseWriter_HijackPassthrough(t *testing.T) {
	inner := &hijackRecorder{ResponseWriter: httptest.NewRecorder()}
	rw := &metricsResponseWriter{ResponseWriter: inner, statusCode: http.StatusOK}

	_, _, err := rw.Hijack()
	assert.NoError(t, err)
	assert.True(t, inner.hijacked)

	_, _, err = (&metricsResponseWriter{ResponseWriter: &bareWriter{}}).Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
