// Package metrics exposes prometheus counters for authentication outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the counters.
const (
	ResultSuccess     = "success"
	ResultRejected    = "rejected"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

// Metrics contains the portal's counters.
type Metrics struct {
	LoginsTotal         *prometheus.CounterVec
	RegistrationsTotal  *prometheus.CounterVec
	PasswordResetsTotal *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authportal_login_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authportal_registration_total",
				Help: "Total number of registration attempts by result",
			},
			[]string{"result"},
		),
		PasswordResetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authportal_password_reset_total",
				Help: "Total number of password reset attempts by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.LoginsTotal)
	reg.MustRegister(m.RegistrationsTotal)
	reg.MustRegister(m.PasswordResetsTotal)

	return m
}

// NewNop returns counters that are not registered anywhere.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Login records a login outcome.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// Registration records a registration outcome.
func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

// PasswordReset records a password reset outcome.
func (m *Metrics) PasswordReset(result string) {
	if m == nil {
		return
	}
	m.PasswordResetsTotal.WithLabelValues(result).Inc()
}
