package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// instruments binds the scheduler vectors to one scheduler name. A nil
// *instruments records nothing.
type instruments struct {
	pending    prometheus.Gauge
	accepted   prometheus.Counter
	dispatches prometheus.Counter
	drops      prometheus.Counter
}

func newInstruments(reg *metrics.Registry, name string) *instruments {
	if reg == nil {
		return nil
	}
	return &instruments{
		pending:    reg.ScheduledTasks.WithLabelValues(name),
		accepted:   reg.TasksScheduled.WithLabelValues(name),
		dispatches: reg.TasksDispatched.WithLabelValues(name),
		drops:      reg.TasksDropped.WithLabelValues(name),
	}
}

func (m *instruments) added(entries int) {
	if m == nil {
		return
	}
	m.accepted.Inc()
	m.pending.Set(float64(entries))
}

// scheduled records the current number of entries.
func (m *instruments) scheduled(entries int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(entries))
}

func (m *instruments) dispatched() {
	if m == nil {
		return
	}
	m.dispatches.Inc()
}

func (m *instruments) dropped() {
	if m == nil {
		return
	}
	m.drops.Inc()
}
