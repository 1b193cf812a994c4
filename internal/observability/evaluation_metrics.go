package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/mission-designer/model"
)

// EvaluationCollector exposes evaluation-engine metrics. It satisfies
// core.EvaluationRecorder.
type EvaluationCollector struct {
	gatherer prometheus.Gatherer

	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	ComparisonsTotal   prometheus.Counter
}

// NewEvaluationCollector registers evaluation metrics against the provided registerer.
func NewEvaluationCollector(reg prometheus.Registerer) (*EvaluationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mission_evaluations_total",
		Help: "Completed solution evaluations, labeled by resulting solution status.",
	}, []string{"status"})
	evaluations, err := registerCounterVec(reg, evaluations, "mission_evaluations_total")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mission_evaluation_duration_seconds",
		Help:    "Time spent measuring and verifying one design solution.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
	duration, err = registerHistogram(reg, duration, "mission_evaluation_duration_seconds")
	if err != nil {
		return nil, err
	}

	comparisons := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mission_solution_comparisons_total",
		Help: "Number of solution comparison reports generated.",
	})
	comparisons, err = registerCounter(reg, comparisons, "mission_solution_comparisons_total")
	if err != nil {
		return nil, err
	}

	return &EvaluationCollector{
		gatherer:           gatherer,
		EvaluationsTotal:   evaluations,
		EvaluationDuration: duration,
		ComparisonsTotal:   comparisons,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *EvaluationCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveEvaluation counts one evaluation and records its duration.
func (c *EvaluationCollector) ObserveEvaluation(status model.SolutionStatus, d time.Duration) {
	if c == nil {
		return
	}
	if c.EvaluationsTotal != nil {
		c.EvaluationsTotal.WithLabelValues(string(status)).Inc()
	}
	if c.EvaluationDuration != nil {
		c.EvaluationDuration.Observe(d.Seconds())
	}
}

// IncComparisons increments the comparison counter.
func (c *EvaluationCollector) IncComparisons() {
	if c == nil || c.ComparisonsTotal == nil {
		return
	}
	c.ComparisonsTotal.Inc()
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
