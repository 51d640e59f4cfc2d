package drc

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "otr"
	metricsSubsystem = "drc"
)

// Metrics counts checker activity.
type Metrics struct {
	ChecksTotal     prometheus.Counter
	ItemsChecked    prometheus.Counter
	ViolationsTotal *prometheus.CounterVec
	CheckDuration   prometheus.Histogram
}

// NewMetrics creates the checker metrics and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "checks_total",
			Help:      "Number of completed board checks",
		}),
		ItemsChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "items_checked_total",
			Help:      "Number of items queried for collisions",
		}),
		ViolationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "violations_total",
			Help:      "Violations found, by kind",
		}, []string{"kind"}),
		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "check_duration_seconds",
			Help:      "Wall time of a board check",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ChecksTotal, m.ItemsChecked, m.ViolationsTotal, m.CheckDuration)
	}
	return m
}

func (m *Metrics) record(r *Report) {
	if m == nil {
		return
	}
	m.ChecksTotal.Inc()
	m.ItemsChecked.Add(float64(r.Items))
	for _, v := range r.Violations {
		m.ViolationsTotal.WithLabelValues(string(v.Kind)).Inc()
	}
	m.CheckDuration.Observe(r.Duration.Seconds())
}
