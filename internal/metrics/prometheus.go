// Package metrics provides Prometheus metrics for the orgdb server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	provisioningRuns     *prometheus.CounterVec
	provisioningDuration prometheus.Histogram
	hashDuration         *prometheus.HistogramVec
	tenantPools          prometheus.Gauge
	tenantPoolConns      *prometheus.GaugeVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orgdb_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orgdb_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		provisioningRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orgdb_provisioning_runs_total",
				Help: "Completed tenant provisioning runs by result and last stage reached or failed",
			},
			[]string{"result", "stage"},
		),
		provisioningDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orgdb_provisioning_duration_seconds",
				Help:    "Wall time of tenant provisioning runs",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		hashDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orgdb_password_hash_duration_seconds",
				Help:    "Time spent hashing or verifying passwords, including the wait for a worker slot",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"op"},
		),
		tenantPools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orgdb_tenant_pools",
				Help: "Number of cached tenant connection pools",
			},
		),
		tenantPoolConns: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orgdb_tenant_pool_connections",
				Help: "Connections per tenant pool by state",
			},
			[]string{"database", "state"},
		),
	}
}

// RecordHTTPRequest records an HTTP request. path should be the route pattern.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordProvisioning records the outcome of a provisioning run.
func (m *Metrics) RecordProvisioning(result, stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.provisioningRuns.WithLabelValues(result, stage).Inc()
	m.provisioningDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveHash(op string, duration time.Duration) {
	if m == nil {
		return
	}
	m.hashDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *Metrics) SetTenantPools(n int) {
	if m == nil {
		return
	}
	m.tenantPools.Set(float64(n))
}

func (m *Metrics) SetTenantPoolConns(database string, acquired, idle, total int32) {
	if m == nil {
		return
	}
	m.tenantPoolConns.WithLabelValues(database, "acquired").Set(float64(acquired))
	m.tenantPoolConns.WithLabelValues(database, "idle").Set(float64(idle))
	m.tenantPoolConns.WithLabelValues(database, "total").Set(float64(total))
}

// Handler returns the exposition handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
