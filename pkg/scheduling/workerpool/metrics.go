package workerpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// instruments binds the registry's vectors to one pool name. A nil
// *instruments records nothing, so call sites need no enabled checks.
type instruments struct {
	size      prometheus.Gauge
	active    prometheus.Gauge
	queued    prometheus.Gauge
	submitted prometheus.Counter
	executed  prometheus.Counter
	panicked  prometheus.Counter
	restarts  prometheus.Counter
	abandoned prometheus.Counter
	wait      prometheus.Observer
	duration  prometheus.Observer
}

func newInstruments(reg *metrics.Registry, name string) *instruments {
	if reg == nil {
		return nil
	}
	return &instruments{
		size:      reg.WorkerPoolSize.WithLabelValues(name),
		active:    reg.WorkerPoolActive.WithLabelValues(name),
		queued:    reg.WorkerPoolQueued.WithLabelValues(name),
		submitted: reg.TasksSubmitted.WithLabelValues(name),
		executed:  reg.TasksExecuted.WithLabelValues(name),
		panicked:  reg.TasksPanicked.WithLabelValues(name),
		restarts:  reg.WorkerRestarts.WithLabelValues(name),
		abandoned: reg.TasksAbandoned.WithLabelValues(name),
		wait:      reg.TaskQueueWait.WithLabelValues(name),
		duration:  reg.TaskExecutionTime.WithLabelValues(name),
	}
}

func (m *instruments) setSize(n int) {
	if m == nil {
		return
	}
	m.size.Set(float64(n))
}

func (m *instruments) posted(queued int) {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.queued.Set(float64(queued))
}

func (m *instruments) started(enqueued, now time.Time, queued int) {
	if m == nil {
		return
	}
	m.active.Inc()
	m.queued.Set(float64(queued))
	if !enqueued.IsZero() {
		m.wait.Observe(now.Sub(enqueued).Seconds())
	}
}

func (m *instruments) finished(elapsed time.Duration, panicked bool) {
	if m == nil {
		return
	}
	m.active.Dec()
	m.executed.Inc()
	m.duration.Observe(elapsed.Seconds())
	if panicked {
		m.panicked.Inc()
	}
}

func (m *instruments) restarted() {
	if m == nil {
		return
	}
	m.restarts.Inc()
}

func (m *instruments) stopped(abandoned int) {
	if m == nil {
		return
	}
	m.abandoned.Add(float64(abandoned))
	m.size.Set(0)
	m.queued.Set(float64(abandoned))
}
