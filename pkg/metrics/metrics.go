// Package metrics provides Prometheus instrumentation for taskpool components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "taskpool"

// Registry holds all metric instances for taskpool components.
type Registry struct {
	// Worker Pool Metrics
	WorkerPoolSize    *prometheus.GaugeVec
	WorkerPoolActive  *prometheus.GaugeVec
	WorkerPoolQueued  *prometheus.GaugeVec
	TasksSubmitted    *prometheus.CounterVec
	TasksExecuted     *prometheus.CounterVec
	TasksPanicked     *prometheus.CounterVec
	TaskQueueWait     *prometheus.HistogramVec
	TaskExecutionTime *prometheus.HistogramVec
	WorkerRestarts    *prometheus.CounterVec
	TasksAbandoned    *prometheus.CounterVec

	// Scheduler Metrics
	TasksScheduled  *prometheus.CounterVec
	TasksDispatched *prometheus.CounterVec
	TasksDropped    *prometheus.CounterVec
	ScheduledTasks  *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by taskpool components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Current number of workers in the pool",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of workers currently running a task",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of tasks waiting in the queue",
			},
			[]string{"pool_name"},
		),

		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "tasks_submitted_total",
				Help:      "Total number of tasks posted to the pool",
			},
			[]string{"pool_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "tasks_executed_total",
				Help:      "Total number of tasks that ran to completion or panicked",
			},
			[]string{"pool_name"},
		),

		TasksPanicked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "tasks_panicked_total",
				Help:      "Total number of tasks whose body panicked",
			},
			[]string{"pool_name"},
		),

		TaskQueueWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "task_queue_wait_seconds",
				Help:      "Time tasks spent queued before a worker picked them up",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		TaskExecutionTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing task bodies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		WorkerRestarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "worker_restarts_total",
				Help:      "Total number of worker goroutines relaunched after a task exited them",
			},
			[]string{"pool_name"},
		),

		TasksAbandoned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "workerpool",
				Name:      "tasks_abandoned_total",
				Help:      "Total number of queued tasks left unrun when the pool stopped",
			},
			[]string{"pool_name"},
		),

		TasksScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "scheduler",
				Name:      "tasks_scheduled_total",
				Help:      "Total number of tasks registered with the scheduler",
			},
			[]string{"scheduler_name"},
		),

		TasksDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "scheduler",
				Name:      "tasks_dispatched_total",
				Help:      "Total number of scheduled runs posted to the worker pool",
			},
			[]string{"scheduler_name"},
		),

		TasksDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "scheduler",
				Name:      "tasks_dropped_total",
				Help:      "Total number of scheduled runs the worker pool refused",
			},
			[]string{"scheduler_name"},
		),

		ScheduledTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "scheduler",
				Name:      "tasks",
				Help:      "Number of tasks currently registered with the scheduler",
			},
			[]string{"scheduler_name"},
		),
	}
}
