package flowcore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are registered against the default Prometheus registry the first
// time this package is imported, mirroring the instrumentation style of
// the oriys-nova runtime: plain package-level collectors, always present,
// cheap to leave unscraped if the host never exposes /metrics.
var (
	registrySlotsInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flowcore",
		Subsystem: "registry",
		Name:      "slots_in_use",
		Help:      "Number of live ResolveHandle slots currently held by the registry.",
	})

	tasksSpawned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flowcore",
		Subsystem: "executor",
		Name:      "tasks_spawned_total",
		Help:      "Total number of tasks started by the cooperative executor.",
	})

	tasksEvicted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowcore",
		Subsystem: "executor",
		Name:      "tasks_evicted_total",
		Help:      "Total number of tasks removed from the executor, by reason.",
	}, []string{"reason"})

	effectsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowcore",
		Subsystem: "command",
		Name:      "effects_emitted_total",
		Help:      "Total number of Effect values emitted from Commands, by variant.",
	}, []string{"variant"})
)

func init() {
	prometheus.MustRegister(registrySlotsInUse, tasksSpawned, tasksEvicted, effectsEmitted)
}

// evictReason labels the tasksEvicted counter.
type evictReason string

const (
	evictDone      evictReason = "done"
	evictCancelled evictReason = "cancelled"
	evictPanicked  evictReason = "panicked"
)
