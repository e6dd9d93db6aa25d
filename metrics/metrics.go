// Package metrics holds the Prometheus instrumentation for the tracker.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "absence_tracker"

// Metrics holds all Prometheus collectors for the application.
type Metrics struct {
	PeopleCreated       prometheus.Counter
	PeopleDeleted       prometheus.Counter
	LeaveRegistered     *prometheus.CounterVec
	ReturnsRegistered   *prometheus.CounterVec
	RejectedOperations  *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
	OnLeave             *prometheus.GaugeVec
	People              prometheus.Gauge
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates the collectors on a private registry, so several instances
// can coexist in one process (tests, multiple handlers).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		PeopleCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "people_created_total",
			Help:      "Total number of people added to the registry",
		}),
		PeopleDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "people_deleted_total",
			Help:      "Total number of people removed from the registry",
		}),
		LeaveRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leave_registered_total",
			Help:      "Leave periods opened, by leave type",
		}, []string{"type"}),
		ReturnsRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_registered_total",
			Help:      "Leave periods closed by a return, by leave type",
		}, []string{"type"}),
		RejectedOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_operations_total",
			Help:      "Operations rejected by validation, by operation and reason",
		}, []string{"operation", "reason"}),
		PersistenceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Store operations that failed, by operation",
		}, []string{"op"}),
		OnLeave: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "people_on_leave",
			Help:      "People currently on leave, by leave type",
		}, []string{"type"}),
		People: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "people",
			Help:      "People in the registry",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
		registry: reg,
	}
}

// Gatherer exposes the private registry for the /metrics handler.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// IncrementPeopleCreated increments the people created counter by 1
func (m *Metrics) IncrementPeopleCreated() {
	m.PeopleCreated.Inc()
}

func (m *Metrics) IncrementPeopleDeleted() {
	m.PeopleDeleted.Inc()
}

func (m *Metrics) IncrementLeaveRegistered(leaveType string) {
	m.LeaveRegistered.WithLabelValues(leaveType).Inc()
}

func (m *Metrics) IncrementReturnsRegistered(leaveType string) {
	m.ReturnsRegistered.WithLabelValues(leaveType).Inc()
}

func (m *Metrics) IncrementRejected(operation, reason string) {
	m.RejectedOperations.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) IncrementPersistenceFailure(op string) {
	m.PersistenceFailures.WithLabelValues(op).Inc()
}

// SetOnLeave replaces the on-leave gauges with the given snapshot.
func (m *Metrics) SetOnLeave(byType map[string]int, people int) {
	for t, n := range byType {
		m.OnLeave.WithLabelValues(t).Set(float64(n))
	}
	m.People.Set(float64(people))
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(seconds)
}
