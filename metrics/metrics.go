// Package metrics exposes editor and runner activity as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/meikuraledutech/caseflow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Recorder implements caseflow.Observer on a private Prometheus registry.
type Recorder struct {
	registry    *prometheus.Registry
	mutations   *prometheus.CounterVec
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
}

var _ caseflow.Observer = (*Recorder)(nil)

// New creates a Recorder with the caseflow collectors and the Go runtime
// collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caseflow",
			Name:      "mutations_total",
			Help:      "Graph mutations by operation and whether they changed the graph.",
		}, []string{"op", "applied"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caseflow",
			Name:      "runs_total",
			Help:      "Completed simulated case runs by status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "caseflow",
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed simulated case runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8),
		}),
	}
	r.registry.MustRegister(
		r.mutations,
		r.runs,
		r.runDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveMutation(op string, applied bool) {
	r.mutations.WithLabelValues(op, strconv.FormatBool(applied)).Inc()
}

func (r *Recorder) ObserveRun(status caseflow.RunStatus, d time.Duration) {
	r.runs.WithLabelValues(string(status)).Inc()
	r.runDuration.Observe(d.Seconds())
}
