package reporting

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for report generation. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	reports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	degraded *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the report metrics against the provided registerer.
// When the registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cafeteria",
			Subsystem: "reports",
			Name:      "generated_total",
			Help:      "Reports generated, by report and status.",
		}, []string{"report", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cafeteria",
			Subsystem: "reports",
			Name:      "duration_seconds",
			Help:      "Time spent computing a report.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cafeteria",
			Subsystem: "reports",
			Name:      "degraded_sections_total",
			Help:      "Report sections replaced by zero values after a failure.",
		}, []string{"report", "section"}),
	}
	registerer.MustRegister(m.reports, m.duration, m.degraded)
	return m
}

func (m *Metrics) ObserveReport(report string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.reports.WithLabelValues(report, status).Inc()
	m.duration.WithLabelValues(report).Observe(elapsed.Seconds())
}

func (m *Metrics) SectionDegraded(report string, section string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(report, section).Inc()
}
