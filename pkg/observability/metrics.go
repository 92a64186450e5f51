package observability

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the executor hooks.
type Metrics struct {
	Plans    *prometheus.CounterVec
	Runs     *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Skips    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_plans_total",
				Help: "Number of resolved plans, by whether existing views are replaced",
			},
			[]string{"replace"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_annotator_runs_total",
				Help: "Number of annotator invocations",
			},
			[]string{"view", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "strata_annotator_duration_seconds",
				Help:    "Duration of annotator invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view"},
		),
		Skips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_annotator_skips_total",
				Help: "Plan steps skipped because the view appeared meanwhile",
			},
			[]string{"view"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Plans, m.Runs, m.Duration, m.Skips)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPlan: func(ctx context.Context, e *domain.PlanEvent) {
			replace := "false"
			if e.Replace {
				replace = "true"
			}
			m.Plans.WithLabelValues(replace).Inc()
		},
		OnAnnotatorFinish: func(ctx context.Context, e *domain.AnnotatorEvent) {
			outcome := "success"
			if e.IsError {
				outcome = "error"
			}
			m.Runs.WithLabelValues(e.View, outcome).Inc()
			m.Duration.WithLabelValues(e.View).Observe(e.Duration.Seconds())
		},
		OnAnnotatorSkip: func(ctx context.Context, e *domain.AnnotatorEvent) {
			m.Skips.WithLabelValues(e.View).Inc()
		},
	}
}
