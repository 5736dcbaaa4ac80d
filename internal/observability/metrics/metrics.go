package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SurveyMetrics exposes counters/histograms for conversation turns, oracle
// calls and booking side effects.
type SurveyMetrics struct {
	turnsTotal         *prometheus.CounterVec
	oracleCallsTotal   *prometheus.CounterVec
	oracleLatency      *prometheus.HistogramVec
	bookingsTotal      *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
}

func NewSurveyMetrics(reg prometheus.Registerer) *SurveyMetrics {
	m := &SurveyMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "conversation_turns_total",
			Help:      "Conversation turns by stage at entry and outcome",
		}, []string{"stage", "outcome"}),
		oracleCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "oracle_calls_total",
			Help:      "Oracle calls by operation and result",
		}, []string{"op", "result"}),
		oracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "survey",
			Name:      "oracle_latency_seconds",
			Help:      "Latency of oracle calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "booking_requests_total",
			Help:      "Appointment booking requests by outcome",
		}, []string{"status"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "notifications_total",
			Help:      "Appointment notifications by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.oracleCallsTotal, m.oracleLatency, m.bookingsTotal, m.notificationsTotal)
	return m
}

func (m *SurveyMetrics) ObserveTurn(stage, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage, outcome).Inc()
}

// ObserveOracleCall satisfies oracle.Observer.
func (m *SurveyMetrics) ObserveOracleCall(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.oracleCallsTotal.WithLabelValues(op, result).Inc()
	m.oracleLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *SurveyMetrics) ObserveBooking(succeeded bool) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(statusLabel(succeeded)).Inc()
}

func (m *SurveyMetrics) ObserveNotification(succeeded bool) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(statusLabel(succeeded)).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
