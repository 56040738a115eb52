package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client's counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	LoginTotal     *prometheus.CounterVec
	LogoutTotal    prometheus.Counter
	GuardDecisions *prometheus.CounterVec
	APIRequests    *prometheus.CounterVec
}

// New creates the counters and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LoginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicctl_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		LogoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinicctl_logouts_total",
			Help: "Total number of logouts.",
		}),
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicctl_guard_decisions_total",
			Help: "Route guard decisions by route and outcome.",
		}, []string{"route", "outcome"}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicctl_api_requests_total",
			Help: "Backend requests by method and status code.",
		}, []string{"method", "code"}),
	}
	m.Registry.MustRegister(m.LoginTotal, m.LogoutTotal, m.GuardDecisions, m.APIRequests)
	return m
}

// ObserveLogin counts a login attempt.
func (m *Metrics) ObserveLogin(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.LoginTotal.WithLabelValues(outcome).Inc()
}

// ObserveLogout counts a logout.
func (m *Metrics) ObserveLogout() {
	if m == nil {
		return
	}
	m.LogoutTotal.Inc()
}

// ObserveGuard counts a route guard decision.
func (m *Metrics) ObserveGuard(route, outcome string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(route, outcome).Inc()
}

// ObserveRequest counts a backend request. code 0 means no response.
func (m *Metrics) ObserveRequest(method string, code int) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
