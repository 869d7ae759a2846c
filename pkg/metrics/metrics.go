// Package metrics exposes solver progress as Prometheus metrics
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/limaJavier/lesson-timetabling/pkg/solver"
)

const namespace = "timetabling"

// Collector is a solver.Listener recording steps, best scores and finished solves on its own registry
type Collector struct {
	registry *prometheus.Registry
	handler  http.Handler

	steps         *prometheus.CounterVec
	improvements  prometheus.Counter
	bestScore     *prometheus.GaugeVec
	solves        *prometheus.CounterVec
	solveDuration prometheus.Histogram
}

var _ solver.Listener = (*Collector)(nil)

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "steps_total",
		Help:      "Local search steps, by whether a move was applied",
	}, []string{"accepted"})

	improvements := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "best_solution_changes_total",
		Help:      "Times the best solution improved",
	})

	bestScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "best_score",
		Help:      "Best score of the running or last solve, by level",
	}, []string{"level"})

	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "solves_total",
		Help:      "Finished solves, by status",
	}, []string{"status"})

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "solve_duration_seconds",
		Help:      "Duration of finished solves",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	registry.MustRegister(steps, improvements, bestScore, solves, solveDuration)

	return &Collector{
		registry:      registry,
		handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		steps:         steps,
		improvements:  improvements,
		bestScore:     bestScore,
		solves:        solves,
		solveDuration: solveDuration,
	}
}

// Handler exposes the Prometheus HTTP handler
func (c *Collector) Handler() http.Handler {
	return c.handler
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) BestSolutionChanged(event solver.BestSolutionEvent) {
	c.improvements.Inc()
	c.bestScore.WithLabelValues("init").Set(float64(event.Score.Init))
	c.bestScore.WithLabelValues("hard").Set(float64(event.Score.Hard))
	c.bestScore.WithLabelValues("soft").Set(float64(event.Score.Soft))
}

func (c *Collector) StepEnded(event solver.StepEvent) {
	accepted := "false"
	if event.Accepted {
		accepted = "true"
	}
	c.steps.WithLabelValues(accepted).Inc()
}

func (c *Collector) Finished(event solver.FinishedEvent) {
	c.solves.WithLabelValues(event.Status.String()).Inc()
	c.solveDuration.Observe(event.Duration.Seconds())
}
