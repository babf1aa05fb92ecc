// Package metrics holds the Prometheus instruments exported by the records service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the records API.
type Metrics struct {
	registry        *prometheus.Registry
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ContactsDeleted prometheus.Counter
	DomainsImported prometheus.Counter
}

// New creates a private registry and registers all records metrics on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_records_requests_total",
			Help: "Total number of records API requests by route and status code.",
		}, []string{"route", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backoffice_records_request_duration_seconds",
			Help:    "Records API request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ContactsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_records_contacts_deleted_total",
			Help: "Total number of contacts deleted.",
		}),
		DomainsImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_records_domains_imported_total",
			Help: "Total number of domain records imported.",
		}),
	}
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// IncContactsDeleted increments the deleted contacts counter by 1.
func (m *Metrics) IncContactsDeleted() {
	if m == nil {
		return
	}
	m.ContactsDeleted.Inc()
}

// AddDomainsImported adds n imported domains.
func (m *Metrics) AddDomainsImported(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DomainsImported.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
