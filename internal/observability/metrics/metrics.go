package metrics

import "github.com/prometheus/client_golang/prometheus"

// WorkflowMetrics exposes counters/histograms for checkout workflow steps.
type WorkflowMetrics struct {
	stepTotal    *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		stepTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carvalue",
			Subsystem: "workflow",
			Name:      "step_total",
			Help:      "Total workflow step executions",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carvalue",
			Subsystem: "workflow",
			Name:      "step_duration_seconds",
			Help:      "Duration of workflow steps",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.stepTotal, m.stepDuration)
	return m
}

// ObserveStep records one step execution with its outcome and duration.
func (m *WorkflowMetrics) ObserveStep(step, status string, seconds float64) {
	if m == nil {
		return
	}
	m.stepTotal.WithLabelValues(step, status).Inc()
	m.stepDuration.WithLabelValues(step).Observe(seconds)
}
