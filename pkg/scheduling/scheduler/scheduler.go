package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
	"github.com/vnykmshr/taskpool/pkg/metrics"
	"github.com/vnykmshr/taskpool/pkg/scheduling/workerpool"
)

const maxIDLength = 255

var (
	// ErrTaskExists is returned when scheduling under an ID that is already in use.
	ErrTaskExists = errors.New("task already exists")

	// ErrTooManyTasks is returned when the scheduler holds MaxTasks entries.
	ErrTooManyTasks = errors.New("maximum number of tasks reached")

	// ErrAlreadyRunning is returned by Start on a running scheduler.
	ErrAlreadyRunning = errors.New("scheduler already running")
)

// cronParser accepts five or six fields (seconds optional) and descriptors
// such as "@hourly" or "@every 5s".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateCron reports whether expr is a cron expression the scheduler accepts.
func ValidateCron(expr string) error {
	if err := validation.ValidateNotEmpty("scheduler", "cron", expr); err != nil {
		return err
	}
	if _, err := cronParser.Parse(expr); err != nil {
		return tperrors.NewValidationError("scheduler", "cron", expr, err.Error()).
			WithHint("use 5 or 6 fields, or a descriptor such as @every 1m")
	}
	return nil
}

// Task describes a scheduled entry.
type Task struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // Zero for one-time and cron tasks
	Cron     string        // Empty unless scheduled with ScheduleCron
	Created  time.Time
}

// Scheduler posts runners into a worker pool at set times.
type Scheduler interface {
	// Basic scheduling
	Schedule(id string, task workerpool.Runner, runAt time.Time) error
	ScheduleAfter(id string, task workerpool.Runner, delay time.Duration) error
	ScheduleRepeating(id string, task workerpool.Runner, interval time.Duration) error

	// Cron scheduling
	ScheduleCron(id string, cronExpr string, task workerpool.Runner) error

	// Task management
	Cancel(id string) bool
	CancelAll()
	List() []Task
	NextRun(id string) (time.Time, bool)

	// Lifecycle
	Start() error
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	Name         string           // Used in logs and metric labels (default: "scheduler")
	WorkerPool   *workerpool.Pool // If nil, the scheduler creates and owns a pool
	Workers      int              // Size of the owned pool (default: 4)
	Location     *time.Location   // For cron scheduling
	TickInterval time.Duration    // How often to check for ready tasks (default: 50ms)
	MaxTasks     int              // Maximum number of scheduled tasks (default: 10000)
	Logger       *zap.Logger
	Metrics      *metrics.Registry
}

type scheduledTask struct {
	id           string
	task         workerpool.Runner
	runAt        time.Time
	interval     time.Duration
	cronExpr     string
	cronSchedule cron.Schedule
	created      time.Time
}

type scheduler struct {
	name         string
	pool         *workerpool.Pool
	ownPool      bool
	location     *time.Location
	tickInterval time.Duration
	maxTasks     int
	logger       *zap.Logger
	metrics      *instruments

	mu       sync.RWMutex
	tasks    map[string]*scheduledTask
	done     chan struct{}
	exited   chan struct{}
	running  bool
	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) Scheduler {
	name := cfg.Name
	if name == "" {
		name = "scheduler"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}

	pool := cfg.WorkerPool
	ownPool := false
	if pool == nil {
		workers := cfg.Workers
		if workers <= 0 {
			workers = 4
		}
		// Cannot fail: workers is positive.
		pool, _ = workerpool.NewWithConfig(workerpool.Config{
			Name:    name + "-pool",
			Workers: workers,
			Logger:  logger,
			Metrics: cfg.Metrics,
		})
		ownPool = true
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10000
	}

	return &scheduler{
		name:         name,
		pool:         pool,
		ownPool:      ownPool,
		location:     location,
		tickInterval: tickInterval,
		maxTasks:     maxTasks,
		logger:       logger.Named("scheduler").With(zap.String("scheduler", name)),
		metrics:      newInstruments(cfg.Metrics, name),
		tasks:        make(map[string]*scheduledTask),
		stopped:      make(chan struct{}),
	}
}

func validateEntry(id string, task workerpool.Runner) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", id); err != nil {
		return err
	}
	if err := validation.ValidateMaxLength("scheduler", "id", id, maxIDLength); err != nil {
		return err
	}
	if err := validation.ValidateNotNil("scheduler", "task", task); err != nil {
		return err
	}
	if f, ok := task.(workerpool.Func); ok && f == nil {
		return tperrors.NewValidationError("scheduler", "task", nil, "cannot be nil")
	}
	return nil
}

// add stores t unless the ID is taken or the scheduler is full.
func (s *scheduler) add(t *scheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.id]; exists {
		return fmt.Errorf("cannot schedule %q: %w, use a different ID or cancel the existing task first", t.id, ErrTaskExists)
	}
	if len(s.tasks) >= s.maxTasks {
		return fmt.Errorf("cannot schedule %q: %w (%d)", t.id, ErrTooManyTasks, s.maxTasks)
	}

	s.tasks[t.id] = t
	s.metrics.added(len(s.tasks))
	s.logger.Debug("task scheduled", zap.String("id", t.id), zap.Time("run_at", t.runAt))
	return nil
}

func (s *scheduler) Schedule(id string, task workerpool.Runner, runAt time.Time) error {
	if err := validateEntry(id, task); err != nil {
		return err
	}
	if runAt.IsZero() {
		return tperrors.NewValidationError("scheduler", "runAt", runAt, "cannot be zero")
	}

	return s.add(&scheduledTask{
		id:      id,
		task:    task,
		runAt:   runAt,
		created: time.Now(),
	})
}

func (s *scheduler) ScheduleAfter(id string, task workerpool.Runner, delay time.Duration) error {
	return s.Schedule(id, task, time.Now().Add(delay))
}

// ScheduleRepeating runs task on the next tick and then every interval.
func (s *scheduler) ScheduleRepeating(id string, task workerpool.Runner, interval time.Duration) error {
	if err := validateEntry(id, task); err != nil {
		return err
	}
	if err := validation.ValidatePositiveDuration("scheduler", "interval", interval); err != nil {
		return err
	}

	now := time.Now()
	return s.add(&scheduledTask{
		id:       id,
		task:     task,
		runAt:    now,
		interval: interval,
		created:  now,
	})
}

func (s *scheduler) ScheduleCron(id string, cronExpr string, task workerpool.Runner) error {
	if err := validateEntry(id, task); err != nil {
		return err
	}
	if err := ValidateCron(cronExpr); err != nil {
		return err
	}
	schedule, _ := cronParser.Parse(cronExpr)

	now := time.Now()
	return s.add(&scheduledTask{
		id:           id,
		task:         task,
		runAt:        schedule.Next(now.In(s.location)),
		cronExpr:     cronExpr,
		cronSchedule: schedule,
		created:      now,
	})
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		delete(s.tasks, id)
		s.metrics.scheduled(len(s.tasks))
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[string]*scheduledTask)
	s.metrics.scheduled(0)
}

func (s *scheduler) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, Task{
			ID:       t.id,
			RunAt:    t.runAt,
			Interval: t.interval,
			Cron:     t.cronExpr,
			Created:  t.created,
		})
	}

	// Sort by run time
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].RunAt.Before(tasks[j].RunAt)
	})

	return tasks
}

// NextRun returns when the task with the given ID will next be posted.
func (s *scheduler) NextRun(id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return time.Time{}, false
	}
	return t.runAt, true
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.stopped:
		return fmt.Errorf("cannot start scheduler: %w", tperrors.ErrClosed)
	default:
	}
	if s.running {
		return fmt.Errorf("cannot start scheduler: %w, call Stop() first", ErrAlreadyRunning)
	}

	s.running = true
	s.done = make(chan struct{})
	s.exited = make(chan struct{})

	go s.run(time.NewTicker(s.tickInterval), s.done, s.exited)
	s.logger.Info("scheduler started", zap.Duration("tick", s.tickInterval))
	return nil
}

// Stop halts the tick loop. If the scheduler owns its pool, the pool is
// stopped as well and the scheduler cannot be started again. The returned
// channel is closed once everything has shut down.
func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	var exited chan struct{}
	if s.running {
		s.running = false
		close(s.done)
		exited = s.exited
	}
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if exited != nil {
			<-exited
		}
		if s.ownPool {
			s.stopOnce.Do(func() {
				s.pool.Stop()
				close(s.stopped)
			})
		}
		s.logger.Info("scheduler stopped")
	}()

	return stopped
}

func (s *scheduler) run(ticker *time.Ticker, done <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			s.processReadyTasks(now)
		}
	}
}

func (s *scheduler) processReadyTasks(now time.Time) {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return
	}

	readyTasks := make([]*scheduledTask, 0, len(s.tasks))
	for id, task := range s.tasks {
		if task.runAt.After(now) {
			continue
		}
		readyTasks = append(readyTasks, task)

		switch {
		case task.interval > 0:
			task.runAt = now.Add(task.interval)
		case task.cronSchedule != nil:
			task.runAt = task.cronSchedule.Next(now.In(s.location))
		default:
			delete(s.tasks, id)
		}
	}
	remaining := len(s.tasks)
	s.mu.Unlock()

	s.metrics.scheduled(remaining)
	for _, task := range readyTasks {
		if err := s.pool.Post(task.task); err != nil {
			s.metrics.dropped()
			s.logger.Warn("failed to post scheduled task", zap.String("id", task.id), zap.Error(err))
			continue
		}
		s.metrics.dispatched()
	}
}
