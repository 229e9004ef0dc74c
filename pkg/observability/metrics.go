package observability

import (
	"context"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by the converter hooks.
type Metrics struct {
	Conversions *prometheus.CounterVec
	Duration    prometheus.Histogram
	Dropped     *prometheus.CounterVec
	Tokens      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg skips
// registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "panmirror",
				Name:      "conversions_total",
				Help:      "Total number of conversions by result.",
			},
			[]string{"result"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "panmirror",
				Name:      "conversion_duration_seconds",
				Help:      "Duration of conversions.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "panmirror",
				Name:      "nodes_dropped_total",
				Help:      "Nodes omitted because they could not be built.",
			},
			[]string{"type"},
		),
		Tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "panmirror",
				Name:      "tokens_total",
				Help:      "Pandoc tokens dispatched by tag.",
			},
			[]string{"tag"},
		),
	}

	if reg != nil {
		for _, c := range m.Collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Collectors lists every collector owned by m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Conversions, m.Duration, m.Dropped, m.Tokens}
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnConvertEnd: func(_ context.Context, e *domain.ConvertEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Conversions.WithLabelValues(result).Inc()
			m.Duration.Observe(e.Duration.Seconds())
		},
		OnTokenDispatch: func(_ context.Context, e *domain.TokenEvent) {
			m.Tokens.WithLabelValues(e.Tag).Inc()
		},
		OnNodeDropped: func(_ context.Context, e *domain.NodeEvent) {
			m.Dropped.WithLabelValues(e.NodeType).Inc()
		},
	}
}
