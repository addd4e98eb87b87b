// Package metrics : счётчики Prometheus для HTTP и доменных операций.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	payments        *prometheus.CounterVec
	capabilities    *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
}

// New : регистрирует все метрики в reg, повторная регистрация в том же реестре - ошибка
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		payments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paydocs_payments_total",
				Help: "Payment submissions by outcome.",
			},
			[]string{"outcome"},
		),
		capabilities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paydocs_capabilities_total",
				Help: "Capability issuance requests by outcome.",
			},
			[]string{"outcome"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paydocs_resolutions_total",
				Help: "Capability resolutions by outcome.",
			},
			[]string{"outcome"},
		),
	}

	for _, collector := range []prometheus.Collector{m.requestCount, m.requestDuration, m.payments, m.capabilities, m.resolutions} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler : middleware для chi, путь в метке - шаблон маршрута (/api/docs/{doc_id})
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestCount.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Payment(outcome string) {
	m.payments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Capability(outcome string) {
	m.capabilities.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Resolution(outcome string) {
	m.resolutions.WithLabelValues(outcome).Inc()
}
