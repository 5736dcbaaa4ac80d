package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSurveyMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSurveyMetrics(reg)

	m.ObserveTurn("in_survey", "advanced")
	m.ObserveTurn("in_survey", "advanced")
	m.ObserveTurn("selecting_time", "reprompt")
	m.ObserveOracleCall("interpret", "ok", 120*time.Millisecond)
	m.ObserveBooking(true)
	m.ObserveNotification(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("in_survey", "advanced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("selecting_time", "reprompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.oracleCallsTotal.WithLabelValues("interpret", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.oracleLatency))
}

func TestSurveyMetricsDefaultRegistry(t *testing.T) {
	m := NewSurveyMetrics(nil)
	t.Cleanup(func() {
		prometheus.Unregister(m.turnsTotal)
		prometheus.Unregister(m.oracleCallsTotal)
		prometheus.Unregister(m.oracleLatency)
		prometheus.Unregister(m.bookingsTotal)
		prometheus.Unregister(m.notificationsTotal)
	})
	m.ObserveTurn("language_select", "advanced")
}

func TestSurveyMetricsNilSafe(t *testing.T) {
	var m *SurveyMetrics
	m.ObserveTurn("stage", "outcome")
	m.ObserveOracleCall("validate", "error", time.Second)
	m.ObserveBooking(true)
	m.ObserveNotification(true)
}
