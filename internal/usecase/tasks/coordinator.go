// Package tasks coordinates deferred work that outlives its triggering
// request. Submitted tasks are acknowledged immediately, processed by a small
// worker pool, and polled until they reach a terminal state. The registry is
// process-local: restarts drop pending tasks, which is acceptable because
// every task is re-submittable.
package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shuttle-service/internal/pkg/clock"
	"shuttle-service/internal/pkg/config"
	"shuttle-service/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const KindTripCancel = "trip-cancel"

type State string

const (
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFailed
}

// Task is the pollable record of one deferred operation. IDs come from a
// process-local sequence, so they are only meaningful within one run.
type Task struct {
	ID         int64
	Kind       string
	TargetID   uuid.UUID
	State      State
	CreatedAt  time.Time
	FinishedAt *time.Time
	Result     map[string]any
	Error      string
}

var (
	submittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shuttle_tasks_submitted_total",
		Help: "Deferred tasks accepted for processing.",
	}, []string{"kind"})
	succeededTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shuttle_tasks_succeeded_total",
		Help: "Deferred tasks that finished successfully.",
	}, []string{"kind"})
	failedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shuttle_tasks_failed_total",
		Help: "Deferred tasks that finished with an error.",
	}, []string{"kind"})
	timedOutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shuttle_tasks_timed_out_total",
		Help: "Deferred tasks force-failed after exceeding the task timeout.",
	}, []string{"kind"})
)

// ExecuteFunc performs the actual work of one task kind. The returned map
// becomes the task result; a non-nil error fails the task.
type ExecuteFunc func(ctx context.Context, targetID uuid.UUID) (map[string]any, error)

type Coordinator struct {
	cfg   config.TasksConfig
	clock clock.Clock

	mu        sync.RWMutex
	tasks     map[int64]*Task
	nextID    int64
	executors map[string]ExecuteFunc

	queue chan int64
	stop  chan struct{}
	wg    sync.WaitGroup
}

func NewCoordinator(cfg config.TasksConfig, clk clock.Clock) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		clock:     clk,
		tasks:     make(map[int64]*Task),
		executors: make(map[string]ExecuteFunc),
		queue:     make(chan int64, cfg.QueueSize),
		stop:      make(chan struct{}),
	}
}

// Register binds an executor to a task kind. Must be called before Start.
func (c *Coordinator) Register(kind string, fn ExecuteFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.executors[kind] = fn
}

func (c *Coordinator) Start() {
	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	c.wg.Add(1)
	go c.janitor()
}

func (c *Coordinator) Stop() {
	close(c.stop)
	c.wg.Wait()
}

var errQueueFull = errs.New("task queue is full")

// Submit registers a pending task and hands it to the worker pool. The
// returned snapshot is safe to retain; it never mutates. A rejected
// submission leaves no pollable record behind.
func (c *Coordinator) Submit(ctx context.Context, kind string, targetID uuid.UUID) (Task, error) {
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.executors[kind]; !ok {
		return Task{}, errs.New("no executor registered for task kind " + kind)
	}

	c.nextID++
	task := &Task{
		ID:        c.nextID,
		Kind:      kind,
		TargetID:  targetID,
		State:     StatePending,
		CreatedAt: c.clock.Now(),
	}

	// Enqueue before the registry insert. Workers cannot observe the id until
	// the lock is released, so the insert and the counter cannot race a
	// completing worker.
	select {
	case c.queue <- task.ID:
	default:
		return Task{}, errQueueFull
	}

	c.tasks[task.ID] = task
	submittedTotal.WithLabelValues(kind).Inc()
	return *task, nil
}

// Get returns a value copy of the task, so callers can never observe a
// half-applied transition.
func (c *Coordinator) Get(id int64) (Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	task, ok := c.tasks[id]
	if !ok {
		return Task{}, errs.ErrTaskNotFound
	}
	snapshot := *task
	if task.Result != nil {
		result := make(map[string]any, len(task.Result))
		for k, v := range task.Result {
			result[k] = v
		}
		snapshot.Result = result
	}
	return snapshot, nil
}

func (c *Coordinator) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case id := <-c.queue:
			c.process(id)
		}
	}
}

func (c *Coordinator) process(id int64) {
	c.mu.RLock()
	task, ok := c.tasks[id]
	var (
		kind     string
		targetID uuid.UUID
		fn       ExecuteFunc
	)
	if ok {
		kind = task.Kind
		targetID = task.TargetID
		fn = c.executors[task.Kind]
	}
	c.mu.RUnlock()
	if !ok || fn == nil {
		return
	}

	// Simulated out-of-band work before the real mutation.
	select {
	case <-c.stop:
		return
	case <-time.After(c.cfg.ProcessingDelay):
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()

	result, err := fn(ctx, targetID)
	if err != nil {
		slog.Warn("deferred task failed", "task_id", id, "kind", kind, "error", err.Error())
		c.resolve(id, StateFailed, nil, err.Error())
		return
	}
	c.resolve(id, StateSuccess, result, "")
}

// resolve applies a terminal transition exactly once; later attempts are
// ignored, so a timed-out task cannot flip to success afterwards.
func (c *Coordinator) resolve(id int64, state State, result map[string]any, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, ok := c.tasks[id]
	if !ok || task.State.IsTerminal() {
		return
	}

	now := c.clock.Now()
	task.State = state
	task.FinishedAt = &now
	task.Result = result
	task.Error = errMsg

	switch state {
	case StateSuccess:
		succeededTotal.WithLabelValues(task.Kind).Inc()
	case StateFailed:
		failedTotal.WithLabelValues(task.Kind).Inc()
	}
}

func (c *Coordinator) janitor() {
	defer c.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep force-fails pending tasks older than the timeout and prunes terminal
// tasks past their retention window.
func (c *Coordinator) sweep() {
	now := c.clock.Now()

	var timedOut []int64
	c.mu.Lock()
	for id, task := range c.tasks {
		switch {
		case task.State == StatePending && now.Sub(task.CreatedAt) > c.cfg.Timeout:
			timedOut = append(timedOut, id)
		case task.State.IsTerminal() && task.FinishedAt != nil && now.Sub(*task.FinishedAt) > c.cfg.Retention:
			delete(c.tasks, id)
		}
	}
	c.mu.Unlock()

	for _, id := range timedOut {
		c.mu.RLock()
		kind := ""
		if task, ok := c.tasks[id]; ok {
			kind = task.Kind
		}
		c.mu.RUnlock()

		c.resolve(id, StateFailed, nil, "task timed out before completion")
		if kind != "" {
			timedOutTotal.WithLabelValues(kind).Inc()
			slog.Warn("deferred task timed out", "task_id", id, "kind", kind)
		}
	}
}
