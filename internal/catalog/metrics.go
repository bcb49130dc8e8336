package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts registrations made against a Registry
type Metrics struct {
	SuitesRegistered prometheus.Counter
	CasesRegistered  prometheus.Counter
	CasesAttached    prometheus.Counter
	Rejected         *prometheus.CounterVec
}

// NewMetrics creates the catalog metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SuitesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "tcat_suites_registered_total",
			Help: "Total number of test suites registered",
		}),
		CasesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "tcat_cases_registered_total",
			Help: "Total number of test cases registered",
		}),
		CasesAttached: factory.NewCounter(prometheus.CounterOpts{
			Name: "tcat_cases_attached_total",
			Help: "Total number of test cases attached to their suite",
		}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tcat_registrations_rejected_total",
			Help: "Registrations rejected as duplicates, by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) suiteRegistered() {
	if m != nil {
		m.SuitesRegistered.Inc()
	}
}

func (m *Metrics) caseRegistered() {
	if m != nil {
		m.CasesRegistered.Inc()
	}
}

func (m *Metrics) caseAttached() {
	if m != nil {
		m.CasesAttached.Inc()
	}
}

func (m *Metrics) rejected(kind string) {
	if m != nil {
		m.Rejected.WithLabelValues(kind).Inc()
	}
}
