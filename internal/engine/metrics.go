package engine

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Drops         *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	Writes        prometheus.Counter
	WriteFailures prometheus.Counter
	Reloads       prometheus.Counter
	BatchSize     prometheus.Histogram
}

// NewMetrics creates the engine collectors and registers them on reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasktree",
			Subsystem: "engine",
			Name:      "drops_applied_total",
			Help:      "Drops applied to the in-memory tree, by intent kind.",
		}, []string{"intent"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasktree",
			Subsystem: "engine",
			Name:      "drops_rejected_total",
			Help:      "Drops rejected before mutation, by reason.",
		}, []string{"reason"}),
		Writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tasktree",
			Subsystem: "engine",
			Name:      "task_writes_total",
			Help:      "Task update writes issued to storage.",
		}),
		WriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tasktree",
			Subsystem: "engine",
			Name:      "task_write_failures_total",
			Help:      "Task update writes that failed.",
		}),
		Reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tasktree",
			Subsystem: "engine",
			Name:      "reloads_total",
			Help:      "Full reloads of the task tree from storage.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tasktree",
			Subsystem: "engine",
			Name:      "commit_batch_size",
			Help:      "Number of task patches written per drop.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Drops, m.Rejections, m.Writes, m.WriteFailures, m.Reloads, m.BatchSize)
	}
	return m
}
