package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*Metrics, *chi.Mux) {
	t.Helper()
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(m.Handler)
	router.Get("/api/docs/{doc_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Delete("/api/docs/{doc_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {})
	return m, router
}

func TestHandlerUsesRoutePattern(t *testing.T) {
	m, router := newRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/docs/123", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/docs/456", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/docs/123", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/api/docs/{doc_id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("DELETE", "/api/docs/{doc_id}", "403")))
	assert.NotZero(t, testutil.CollectAndCount(m.requestDuration))
}

func TestHandlerSkipsMetricsEndpoint(t *testing.T) {
	m, router := newRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))
}

func TestDomainCounters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.Payment("confirmed")
	m.Payment("confirmed")
	m.Capability("issued")
	m.Resolution("already_consumed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.payments.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.capabilities.WithLabelValues("issued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("already_consumed")))
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
