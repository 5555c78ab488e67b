package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
)

// Metrics records solver activity.
type Metrics struct {
	oracleSolves        *prometheus.CounterVec
	oracleSolveDuration *prometheus.HistogramVec
	oracleIterations    *prometheus.HistogramVec
	allocations         *prometheus.CounterVec
	allMetrics          []prometheus.Collector
}

func New() *Metrics {
	oracleSolves := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "oracle_solves_total",
			Help: "Number of programs solved, by objective kind and outcome",
		},
		[]string{objectiveLabel, statusLabel},
	)
	oracleSolveDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "oracle_solve_duration_seconds",
			Help:    "Time taken to solve a program",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
		},
		[]string{objectiveLabel},
	)
	oracleIterations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "oracle_iterations",
			Help:    "Number of iterations reported by the oracle for successful solves",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{objectiveLabel},
	)
	allocations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "allocations_total",
			Help: "Number of allocations computed, by criterion and outcome",
		},
		[]string{criterionLabel, statusLabel},
	)
	return &Metrics{
		oracleSolves:        oracleSolves,
		oracleSolveDuration: oracleSolveDuration,
		oracleIterations:    oracleIterations,
		allocations:         allocations,
		allMetrics: []prometheus.Collector{
			oracleSolves,
			oracleSolveDuration,
			oracleIterations,
			allocations,
		},
	}
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, metric := range m.allMetrics {
		metric.Describe(ch)
	}
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, metric := range m.allMetrics {
		metric.Collect(ch)
	}
}

// ReportAllocation records the outcome of computing an allocation under the given criterion.
func (m *Metrics) ReportAllocation(criterion string, status string) {
	m.allocations.WithLabelValues(criterion, status).Inc()
}

// Instrument returns an oracle that behaves like oracle and records each solve.
func (m *Metrics) Instrument(oracle optimisation.Oracle) optimisation.Oracle {
	return &instrumentedOracle{oracle: oracle, metrics: m}
}

type instrumentedOracle struct {
	oracle  optimisation.Oracle
	metrics *Metrics
}

func (o *instrumentedOracle) Solve(ctx *fairdivcontext.Context, p *optimisation.Program) (*optimisation.Solution, error) {
	kind := string(p.Objective.Kind())
	start := time.Now()
	solution, err := o.oracle.Solve(ctx, p)
	o.metrics.oracleSolveDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		o.metrics.oracleSolves.WithLabelValues(kind, errored).Inc()
		return nil, err
	}
	o.metrics.oracleSolves.WithLabelValues(kind, string(solution.Status)).Inc()
	if solution.IsOptimal() {
		o.metrics.oracleIterations.WithLabelValues(kind).Observe(float64(solution.Iterations))
	}
	return solution, nil
}
