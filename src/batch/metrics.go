package batch

import (
	"github.com/prometheus/client_golang/prometheus"

	"kp_with_conflicts/src/kpcs"
)

const metricsNamespace = "kpcs"

// Metrics holds the batch counters in their own registry so they can be
// dumped to a text file at the end of a run.
type Metrics struct {
	Registry     *prometheus.Registry
	Instances    *prometheus.CounterVec
	Statuses     *prometheus.CounterVec
	SolveSeconds prometheus.Histogram
	BestValue    *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Instances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "instances_total",
			Help:      "Instance files processed, by outcome.",
		}, []string{"outcome"}),
		Statuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "solver_status_total",
			Help:      "Solver calls, by returned status.",
		}, []string{"status"}),
		SolveSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock time spent in the solver per instance.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		BestValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "instance_total_value",
			Help:      "Total value of the selection found for an instance.",
		}, []string{"path"}),
	}
	m.Registry.MustRegister(m.Instances, m.Statuses, m.SolveSeconds, m.BestValue)
	return m
}

func (m *Metrics) ObserveReadError() {
	m.Instances.WithLabelValues(ReadError.String()).Inc()
}

func (m *Metrics) ObserveResult(path string, res *kpcs.Result) {
	m.Statuses.WithLabelValues(res.Status.String()).Inc()
	m.SolveSeconds.Observe(res.Elapsed.Seconds())
	if res.Solved() {
		m.Instances.WithLabelValues(Solved.String()).Inc()
		m.BestValue.WithLabelValues(path).Set(float64(res.TotalValue))
		return
	}
	m.Instances.WithLabelValues(NoSolution.String()).Inc()
}

func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
