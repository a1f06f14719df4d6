package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type countingTask struct {
	name     string
	runs     atomic.Int32
	interval time.Duration
	err      error
}

func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	return t.err
}

func (t *countingTask) Interval() time.Duration { return t.interval }

func (t *countingTask) Name() string { return t.name }

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	task := &countingTask{name: "interval", interval: 20 * time.Millisecond}

	s := New(context.Background())
	s.AddTask(task)
	s.Start()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	stopped := task.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, task.runs.Load())
	assert.Equal(t, float64(stopped), testutil.ToFloat64(taskRuns.WithLabelValues("interval", "ok")))
}

func TestScheduler_ContinuesAfterTaskError(t *testing.T) {
	task := &countingTask{name: "failing", interval: 10 * time.Millisecond, err: assert.AnError}

	s := New(context.Background())
	s.AddTask(task)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(taskRuns.WithLabelValues("failing", "error")) >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_TaskAddedAfterStartRuns(t *testing.T) {
	s := New(context.Background())
	s.Start()
	defer s.Stop()

	task := &countingTask{name: "late", interval: time.Hour}
	s.AddTask(task)

	assert.Eventually(t, func() bool { return task.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_SkipsNonPositiveInterval(t *testing.T) {
	task := &countingTask{name: "disabled"}

	s := New(context.Background())
	s.AddTask(task)
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	assert.Zero(t, task.runs.Load())
}
