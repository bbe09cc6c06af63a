package workerpool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// Errors returned by Pool methods.
var (
	ErrClosed       = tperrors.ErrClosed
	ErrInvalidTask  = tperrors.ErrInvalidTask
	ErrTaskPanicked = tperrors.ErrTaskPanicked
)

// Config holds configuration options for creating a worker pool.
type Config struct {
	// Name identifies the pool in logs and metric labels.
	// If empty, a random "pool-xxxxxxxx" name is generated.
	Name string

	// Workers is the number of workers started with the pool.
	// Zero is legal: the pool accepts tasks but never runs them until Grow is called.
	Workers int

	// Logger receives pool and worker events. If nil, zap.L() is used.
	Logger *zap.Logger

	// Metrics is the Prometheus registry to record into. If nil, no metrics are recorded.
	Metrics *metrics.Registry

	// PanicHandler is called, on the worker goroutine, after a task body panics
	// and the panic has been logged.
	PanicHandler func(task *Task, recovered interface{})

	// OnWorkerStart is called on the worker goroutine before it takes its first task.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called on the worker goroutine as it exits.
	OnWorkerStop func(workerID int)
}

// DefaultConfig returns a configuration sized to the machine's CPU count.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
	}
}

// Stats is a point-in-time snapshot of pool counters. Fields are read
// independently and may not be mutually consistent under load.
type Stats struct {
	Name      string
	Workers   int
	Active    int
	Queued    int
	Submitted int64
	Completed int64
	Panicked  int64
	Restarts  int64
}

// Pool runs posted tasks on a fixed set of worker goroutines in FIFO order.
//
// Pools must be created with New, NewDefault or NewWithConfig and must not be
// copied. Go has no destructors: call Stop when done, otherwise the idle
// worker goroutines stay parked for the life of the process.
type Pool struct {
	core *core

	// lifecycle serializes Grow, Shrink and Stop, and is held across joins.
	lifecycle sync.Mutex
	stopped   bool
	nextID    int

	// wmu guards workers so ActiveServices and Size never wait on a join.
	wmu     sync.RWMutex
	workers []*worker

	// closed is written under core.mu so that no task is queued after Stop.
	closed    atomic.Bool
	submitted atomic.Int64
}

// New creates a pool with the given number of workers.
// It panics if workers is negative.
func New(workers int) *Pool {
	p, err := NewWithConfig(Config{Workers: workers})
	if err != nil {
		panic(err)
	}
	return p
}

// NewDefault creates a pool with one worker per CPU.
func NewDefault() *Pool {
	return New(runtime.NumCPU())
}

// NewWithConfig creates a pool from cfg and launches its workers.
func NewWithConfig(cfg Config) (*Pool, error) {
	if err := validation.ValidateNonNegative("workerpool", "workers", cfg.Workers); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = "pool-" + uuid.NewString()[:8]
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("workerpool").With(zap.String("pool", name))

	c := newCore(name, logger, cfg.Metrics)
	c.panicHandler = cfg.PanicHandler
	c.onWorkerStart = cfg.OnWorkerStart
	c.onWorkerStop = cfg.OnWorkerStop

	p := &Pool{core: c}
	p.spawn(cfg.Workers)

	logger.Info("worker pool created", zap.Int("workers", cfg.Workers))
	return p, nil
}

// spawn creates and launches n workers. The caller holds p.lifecycle or owns
// p exclusively.
func (p *Pool) spawn(n int) {
	fresh := make([]*worker, 0, n)
	for i := 0; i < n; i++ {
		fresh = append(fresh, newWorker(p.nextID, p.core))
		p.nextID++
	}

	p.wmu.Lock()
	p.workers = append(p.workers, fresh...)
	size := len(p.workers)
	p.wmu.Unlock()

	for _, w := range fresh {
		w.launch()
	}
	p.core.metrics.setSize(size)
}

// Name returns the pool name used in logs and metrics.
func (p *Pool) Name() string {
	return p.core.name
}

// Post queues r for execution and wakes one idle worker. It never waits for
// the task to run. Tasks posted from one goroutine start in the order they
// were posted.
//
// Post fails only for a nil Runner (ErrInvalidTask) or a stopped pool
// (ErrClosed).
func (p *Pool) Post(r Runner) error {
	if r == nil {
		return fmt.Errorf("cannot post task: %w", ErrInvalidTask)
	}
	return p.PostTask(NewTask(r))
}

// PostFunc is Post for a plain function.
func (p *Pool) PostFunc(fn func()) error {
	if fn == nil {
		return fmt.Errorf("cannot post task: %w", ErrInvalidTask)
	}
	return p.PostTask(NewTask(Func(fn)))
}

// PostTask queues an existing Task. A task that has already been invoked or
// posted is rejected with ErrInvalidTask. A task rejected by a stopped pool
// may be posted elsewhere.
func (p *Pool) PostTask(t *Task) error {
	if !t.valid() || !t.claim() {
		return fmt.Errorf("cannot post task: %w", ErrInvalidTask)
	}

	c := p.core
	c.mu.Lock()
	if p.closed.Load() {
		c.mu.Unlock()
		t.release()
		return fmt.Errorf("cannot post task: worker pool has been stopped: %w", ErrClosed)
	}
	t.enqueued = time.Now()
	c.queue.pushLocked(t)
	queued := c.queue.lenLocked()
	c.mu.Unlock()
	c.cond.Signal()

	p.submitted.Add(1)
	c.metrics.posted(queued)
	return nil
}

// ActiveServices returns the number of workers currently running a task.
//
// The value is a racy snapshot: workers change state without coordinating
// with this call, so it may be stale by the time it returns. Use it for
// monitoring, not for synchronization.
func (p *Pool) ActiveServices() int {
	p.wmu.RLock()
	defer p.wmu.RUnlock()

	count := 0
	for _, w := range p.workers {
		if w.isActive() {
			count++
		}
	}
	return count
}

// Size returns the number of workers in the pool. It is zero after Stop.
func (p *Pool) Size() int {
	p.wmu.RLock()
	defer p.wmu.RUnlock()
	return len(p.workers)
}

// QueueSize returns the number of tasks waiting for a worker. After Stop it
// reports the tasks that were abandoned.
func (p *Pool) QueueSize() int {
	return p.core.queue.Len()
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	c := p.core
	return Stats{
		Name:      c.name,
		Workers:   p.Size(),
		Active:    p.ActiveServices(),
		Queued:    p.QueueSize(),
		Submitted: p.submitted.Load(),
		Completed: c.completed.Load(),
		Panicked:  c.panicked.Load(),
		Restarts:  c.restarts.Load(),
	}
}

// Grow launches n additional workers against the same queue.
func (p *Pool) Grow(n int) error {
	if err := validation.ValidateNonNegative("workerpool", "n", n); err != nil {
		return err
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.stopped || p.closed.Load() {
		return fmt.Errorf("cannot grow pool: %w", ErrClosed)
	}
	p.spawn(n)
	p.core.logger.Debug("worker pool grown", zap.Int("added", n), zap.Int("workers", p.Size()))
	return nil
}

// Shrink stops and removes up to n workers, most recently added first, and
// returns how many were removed. It blocks until each removed worker has
// finished the task it is running, if any. Queued tasks stay queued for the
// remaining workers.
func (p *Pool) Shrink(n int) int {
	if n <= 0 {
		return 0
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.stopped {
		return 0
	}

	p.wmu.Lock()
	if n > len(p.workers) {
		n = len(p.workers)
	}
	keep := len(p.workers) - n
	removed := append([]*worker(nil), p.workers[keep:]...)
	clear(p.workers[keep:])
	p.workers = p.workers[:keep]
	p.wmu.Unlock()

	p.halt(removed, false)
	p.core.metrics.setSize(keep)
	p.core.logger.Debug("worker pool shrunk", zap.Int("removed", n), zap.Int("workers", keep))
	return n
}

// Stop shuts the pool down. Every worker finishes the task it is running,
// then exits; tasks still queued are abandoned. Stop blocks until all worker
// goroutines have exited, which is forever if a running task never returns.
//
// Stop is idempotent. Concurrent callers all return once the first call has
// joined every worker.
//
// Stop must not be called from a task running on the same pool: it would wait
// for its own worker and never return. Post a Stop to another goroutine
// instead (go p.Stop()).
func (p *Pool) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.stopped {
		return
	}

	p.wmu.RLock()
	workers := append([]*worker(nil), p.workers...)
	p.wmu.RUnlock()

	abandoned := p.halt(workers, true)

	p.wmu.Lock()
	p.workers = nil
	p.wmu.Unlock()
	p.stopped = true

	c := p.core
	c.metrics.stopped(abandoned)
	if abandoned > 0 {
		c.logger.Warn("worker pool stopped with queued tasks", zap.Int("abandoned", abandoned))
	}
	c.logger.Info("worker pool stopped",
		zap.Int64("submitted", p.submitted.Load()),
		zap.Int64("completed", c.completed.Load()),
	)
}

// halt requests stop on workers, wakes every waiter and joins the workers.
// If closing is set it also closes the pool to new tasks and returns the
// number of tasks left in the queue at that point.
func (p *Pool) halt(workers []*worker, closing bool) int {
	c := p.core

	// Flags are set under the guard: a worker evaluates its wait predicate
	// while holding it, so it either sees the flag or is already parked in
	// Wait and receives the broadcast below.
	c.mu.Lock()
	for _, w := range workers {
		w.setStop()
	}
	abandoned := 0
	if closing {
		p.closed.Store(true)
		abandoned = c.queue.lenLocked()
	}
	c.mu.Unlock()
	c.cond.Broadcast()

	for _, w := range workers {
		w.tryJoin()
	}
	return abandoned
}
