package service

import (
	"enrollgate/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts resolver outcomes; a nil *Metrics records nothing
type Metrics struct {
	Created         *prometheus.CounterVec
	Resolved        *prometheus.CounterVec
	Enrollments     *prometheus.CounterVec
	AlreadyResolved *prometheus.CounterVec
	IntegrityFaults prometheus.Counter
}

// NewMetrics creates and registers the access metrics
// Returns nil if reg is nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		Created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "access",
			Name:      "requests_created_total",
			Help:      "Access requests created, by content kind.",
		}, []string{"kind"}),
		Resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "access",
			Name:      "requests_resolved_total",
			Help:      "Access requests resolved, by outcome and content kind.",
		}, []string{"outcome", "kind"}),
		Enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "access",
			Name:      "enrollment_changes_total",
			Help:      "Enrollments created by self-enroll or removed by unenroll.",
		}, []string{"action"}),
		AlreadyResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "access",
			Name:      "already_resolved_total",
			Help:      "Resolutions that lost the race and found the request gone.",
		}, []string{"op"}),
		IntegrityFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "access",
			Name:      "integrity_faults_total",
			Help:      "Pending requests observed alongside an enrollment for the same pair.",
		}),
	}
	reg.MustRegister(m.Created, m.Resolved, m.Enrollments, m.AlreadyResolved, m.IntegrityFaults)
	return m
}

func (m *Metrics) created(kind string) {
	if m != nil {
		m.Created.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) resolved(outcome, kind string) {
	if m != nil {
		m.Resolved.WithLabelValues(outcome, kind).Inc()
	}
}

func (m *Metrics) enrollment(action string) {
	if m != nil {
		m.Enrollments.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) alreadyResolved(op string) {
	if m != nil {
		m.AlreadyResolved.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) fault() {
	if m != nil {
		m.IntegrityFaults.Inc()
	}
}
