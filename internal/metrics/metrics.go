package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mathquiz"

// Metrics exposes quiz counters on /metrics. A nil *Metrics is a valid no-op.
type Metrics struct {
	sessionsCreated prometheus.Counter
	actions         *prometheus.CounterVec
	answers         *prometheus.CounterVec
	bankLoads       *prometheus.CounterVec
	bankReloads     prometheus.Counter
}

// New registers collectors with reg (prometheus.DefaultRegisterer in the server).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Quiz sessions created.",
		}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "User actions applied to sessions, by type and outcome.",
		}, []string{"action", "outcome"}),
		answers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Recorded answers, by subject and correctness.",
		}, []string{"subject", "result"}),
		bankLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bank_loads_total",
			Help:      "Question bank load attempts, by outcome.",
		}, []string{"outcome"}),
		bankReloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bank_reload_broadcasts_total",
			Help:      "Bank change notifications sent to connected clients.",
		}),
	}
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}

func (m *Metrics) ActionApplied(action, outcome string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) AnswerRecorded(subject string, correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.answers.WithLabelValues(subject, result).Inc()
}

// BankLoaded implements question.LoadObserver.
func (m *Metrics) BankLoaded(outcome string) {
	if m == nil {
		return
	}
	m.bankLoads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) BankReloadBroadcast() {
	if m == nil {
		return
	}
	m.bankReloads.Inc()
}
