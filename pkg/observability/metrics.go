package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Navigation outcomes used as the "outcome" label.
const (
	OutcomeCompleted = "completed"
	OutcomeCanceled  = "canceled"
	OutcomeFailed    = "failed"
)

// Metrics holds the router collectors.
type Metrics struct {
	registry *prometheus.Registry

	Navigations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	InFlight    prometheus.Gauge
	Swaps       *prometheus.CounterVec
}

// NewMetrics creates the collectors under namespace ("waypoint" if empty)
// on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "waypoint"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Finished navigations by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "navigation_duration_seconds",
			Help:      "Time from navigation start to its outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"trigger", "outcome"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "navigations_in_flight",
			Help:      "Navigations started but not finished.",
		}),
		Swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewport_swaps_total",
			Help:      "Content swaps by viewport path.",
		}, []string{"viewport"}),
	}
	m.registry.MustRegister(m.Navigations, m.Duration, m.InFlight, m.Swaps)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	finish := func(outcome string) func(context.Context, *domain.NavigationEvent) {
		return func(_ context.Context, e *domain.NavigationEvent) {
			m.InFlight.Dec()
			m.Navigations.WithLabelValues(string(e.Trigger), outcome).Inc()
			m.Duration.WithLabelValues(string(e.Trigger), outcome).Observe(e.Duration.Seconds())
		}
	}
	return domain.LifecycleHooks{
		OnNavigationStart: func(context.Context, *domain.NavigationEvent) {
			m.InFlight.Inc()
		},
		OnNavigationEnd:    finish(OutcomeCompleted),
		OnNavigationCancel: finish(OutcomeCanceled),
		OnNavigationError:  finish(OutcomeFailed),
		OnViewportSwap: func(_ context.Context, e *domain.ViewportEvent) {
			m.Swaps.WithLabelValues(e.Viewport).Inc()
		},
	}
}
