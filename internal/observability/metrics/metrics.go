package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metric names read back by the dashboard tool usage snapshot.
const (
	ToolCallsMetric = "dental_tools_calls_total"
)

// ServiceMetrics exposes counters/histograms for the voice tools, the
// notification relay and admin logins.
type ServiceMetrics struct {
	toolCalls     *prometheus.CounterVec
	toolLatency   *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	m := &ServiceMetrics{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total voice tool calls by result status",
		}, []string{"tool", "status"}),
		toolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dental",
			Subsystem: "tools",
			Name:      "latency_seconds",
			Help:      "Latency of voice tool calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Total WhatsApp notifications by outcome",
		}, []string{"kind", "outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "admin",
			Name:      "logins_total",
			Help:      "Total admin login attempts by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.toolCalls, m.toolLatency, m.notifications, m.logins)
	return m
}

func (m *ServiceMetrics) ObserveTool(tool, status string, seconds float64) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolLatency.WithLabelValues(tool).Observe(seconds)
}

func (m *ServiceMetrics) ObserveNotification(kind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, outcome).Inc()
}

func (m *ServiceMetrics) ObserveLogin(success bool) {
	if m == nil {
		return
	}
	label := "failure"
	if success {
		label = "success"
	}
	m.logins.WithLabelValues(label).Inc()
}
