// Package metrics provides Prometheus instrumentation for taskpool components.
//
// # Quick Start
//
// Worker pools and schedulers take a *Registry in their configuration. Pass
// metrics.DefaultRegistry to publish on the default Prometheus registerer, or
// build an isolated one:
//
//	reg := prometheus.NewRegistry()
//	pool, err := workerpool.NewWithConfig(workerpool.Config{
//		Name:    "ingest",
//		Workers: 8,
//		Metrics: metrics.NewRegistry(reg),
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// ## Worker Pool Metrics
//
//   - taskpool_workerpool_size: Current number of workers
//   - taskpool_workerpool_active_workers: Workers currently running a task
//   - taskpool_workerpool_queued_tasks: Tasks waiting in the queue
//   - taskpool_workerpool_tasks_submitted_total: Tasks posted
//   - taskpool_workerpool_tasks_executed_total: Tasks run (including panics)
//   - taskpool_workerpool_tasks_panicked_total: Tasks whose body panicked
//   - taskpool_workerpool_task_queue_wait_seconds: Time between post and pickup
//   - taskpool_workerpool_task_duration_seconds: Task body execution time
//   - taskpool_workerpool_worker_restarts_total: Worker goroutines relaunched
//   - taskpool_workerpool_tasks_abandoned_total: Tasks dropped by Stop
//
// ## Scheduler Metrics
//
//   - taskpool_scheduler_tasks_scheduled_total: Tasks registered
//   - taskpool_scheduler_tasks_dispatched_total: Runs posted to the pool
//   - taskpool_scheduler_tasks_dropped_total: Runs the pool refused
//   - taskpool_scheduler_tasks: Tasks currently registered
//
// # Labels
//
//   - pool_name: Name of the worker pool instance
//   - scheduler_name: Name of the scheduler instance
//
// The active and queued gauges are sampled when tasks are posted, picked up
// and finished; like Pool.ActiveServices they are observational only.
package metrics
