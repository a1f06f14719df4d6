package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleet_filter",
		Subsystem: "scheduler",
		Name:      "task_runs_total",
		Help:      "Number of background task runs by outcome.",
	}, []string{"task", "outcome"})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fleet_filter",
		Subsystem: "scheduler",
		Name:      "task_duration_seconds",
		Help:      "Duration of background task runs.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"task"})
)

// Task is a unit of background work run on a fixed interval
type Task interface {
	Run(ctx context.Context) error
	Interval() time.Duration
	Name() string
}

// Scheduler runs background tasks such as cache sweeping and watched queries
type Scheduler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	tasks   []Task
	started bool
	wg      sync.WaitGroup
}

// New creates a scheduler bound to ctx
func New(ctx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTask registers a task. Tasks added after Start begin running at once.
func (s *Scheduler) AddTask(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task)
	if s.started {
		s.launch(task)
	}
}

// Start runs every task immediately and then on its interval
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	for _, task := range s.tasks {
		s.launch(task)
	}
	slog.Info("Task scheduler started", "task_count", len(s.tasks))
}

// Stop cancels all tasks and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Task scheduler stopped")
}

func (s *Scheduler) launch(task Task) {
	if task.Interval() <= 0 {
		slog.Warn("Skipping task without a positive interval", "task", task.Name(), "interval", task.Interval())
		return
	}
	s.wg.Add(1)
	go s.loop(task)
}

func (s *Scheduler) loop(task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval())
	defer ticker.Stop()

	s.runOnce(task)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(task)
		}
	}
}

func (s *Scheduler) runOnce(task Task) {
	start := time.Now()
	err := task.Run(s.ctx)
	taskDuration.WithLabelValues(task.Name()).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		taskRuns.WithLabelValues(task.Name(), "ok").Inc()
	case s.ctx.Err() != nil:
		// shutting down, the task was interrupted
		taskRuns.WithLabelValues(task.Name(), "cancelled").Inc()
	default:
		taskRuns.WithLabelValues(task.Name(), "error").Inc()
		slog.Error("Error running task", "task", task.Name(), "error", err)
	}
}
