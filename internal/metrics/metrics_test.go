package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SessionCreated()
	m.AnswerRecorded("Algebra", true)
	m.AnswerRecorded("Algebra", false)
	m.AnswerRecorded("Algebra", true)
	m.BankLoaded("missing")
	m.ActionApplied("submit", "ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.answers.WithLabelValues("Algebra", "correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answers.WithLabelValues("Algebra", "incorrect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bankLoads.WithLabelValues("missing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.actions.WithLabelValues("submit", "ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionCreated()
		m.ActionApplied("next", "ok")
		m.AnswerRecorded("Algebra", true)
		m.BankLoaded("ok")
		m.BankReloadBroadcast()
	})
}
