package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ytget/yt-queue/internal/download"
	"github.com/ytget/yt-queue/internal/model"
	"github.com/ytget/yt-queue/internal/store"
)

// Timing defaults
const (
	DefaultPollInterval   = 250 * time.Millisecond
	DefaultPersistTimeout = 5 * time.Second
)

// ErrEnginePanic wraps a panic raised inside the download engine
var ErrEnginePanic = errors.New("download engine panicked")

// Sink receives controller and worker events
type Sink interface {
	Publish(event model.Event)
	Progress(taskID string, progress model.Progress)
}

// Recorder stores the outcome of every finished task
type Recorder interface {
	Record(ctx context.Context, task model.Task, outputPath string, taskErr error) error
}

// Snapshot is a consistent copy of the queue
type Snapshot struct {
	Current *model.Task
	Pending []model.Task
	State   model.WorkerState
}

// Queued returns the number of tasks waiting to run
func (s Snapshot) Queued() int {
	return len(s.Pending)
}

// Controller owns the queue, its persistence and the worker lifecycle
type Controller struct {
	store        store.Store
	engine       download.Engine
	sink         Sink
	recorder     Recorder
	logger       *slog.Logger
	engineOpts   download.EngineOptions
	pollInterval time.Duration

	// ctx is cancelled by Shutdown only
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	current  *model.Task
	pending  []model.Task
	paused   bool
	stopping bool
	done     chan struct{} // non-nil while a worker is alive
	exiting  chan struct{} // detached worker that has not closed done yet
	wake     chan struct{}
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithPollInterval sets how often a paused worker rechecks its flags
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithRecorder records finished tasks, e.g. into the download history
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithEngineOptions sets the options passed to download.BuildRequest
func WithEngineOptions(opts download.EngineOptions) Option {
	return func(c *Controller) {
		c.engineOpts = opts
	}
}

// New creates a controller with an empty queue. Call Hydrate to load the store.
func New(st store.Store, engine download.Engine, sink Sink, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		store:        st,
		engine:       engine,
		sink:         sink,
		logger:       slog.Default(),
		engineOpts:   download.DefaultEngineOptions(),
		pollInterval: DefaultPollInterval,
		ctx:          ctx,
		cancel:       cancel,
		wake:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	c.logger = c.logger.With("component", "queue")
	return c
}

// Hydrate replaces the in-memory queue with the stored one. An unreadable
// store leaves the queue empty; the error is reported and returned.
func (c *Controller) Hydrate(ctx context.Context) error {
	tasks, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to load queue, starting empty", "error", err)
		c.sink.Publish(model.Event{Kind: model.EventWarning, Err: err.Error(), Message: "saved queue could not be loaded"})
		tasks = nil
	}

	c.mu.Lock()
	c.current = nil
	c.pending = tasks
	c.publishStateLocked()
	c.mu.Unlock()

	c.logger.Info("queue hydrated", "tasks", len(tasks))

	if err != nil {
		return fmt.Errorf("failed to hydrate queue: %w", err)
	}
	return nil
}

// Enqueue validates task and appends it to the queue
func (c *Controller) Enqueue(task model.Task) error {
	return c.EnqueueAll([]model.Task{task})
}

// EnqueueAll validates every task and appends them in order with a single
// write to the store. Nothing is queued if any task is invalid.
func (c *Controller) EnqueueAll(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	normalized := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		task = task.Normalize()
		if err := task.Validate(); err != nil {
			return fmt.Errorf("invalid task %s: %w", task.GetDisplayTitle(), err)
		}
		normalized = append(normalized, task)
	}

	c.mu.Lock()
	c.pending = append(c.pending, normalized...)
	c.persistLocked()
	queued := len(c.pending)
	c.publishStateLocked()
	c.mu.Unlock()

	c.logger.Info("tasks enqueued", "count", len(normalized), "queued", queued)
	return nil
}

// Start launches the worker, or resumes a paused one. It is a no-op while
// the worker is running or stopping.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.done == nil:
		c.paused = false
		c.stopping = false
		c.done = make(chan struct{})
		go c.run(c.done)
		c.logger.Info("worker started")
	case c.stopping:
		return
	case c.paused:
		c.paused = false
		c.signalLocked()
		c.logger.Info("worker resumed")
	default:
		return
	}
	c.publishStateLocked()
}

// Resume is an alias for Start
func (c *Controller) Resume() {
	c.Start()
}

// Pause stops the worker from dequeuing further tasks. A task already
// downloading runs to completion.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done == nil || c.stopping || c.paused {
		return
	}
	c.paused = true
	c.logger.Info("worker paused")
	c.publishStateLocked()
}

// Stop asks the worker to exit and blocks until it has. A task already
// downloading runs to completion first. A worker that already decided to
// exit is still waited for.
func (c *Controller) Stop() {
	c.mu.Lock()
	done := c.done
	if done == nil {
		exiting := c.exiting
		c.mu.Unlock()
		if exiting != nil {
			<-exiting
		}
		return
	}
	if !c.stopping {
		c.stopping = true
		c.signalLocked()
		c.logger.Info("worker stopping")
		c.publishStateLocked()
	}
	c.mu.Unlock()

	<-done
}

// Shutdown abandons the in-flight download and waits for the worker to exit.
// The abandoned task stays first in the store and is re-offered on the next
// Hydrate.
func (c *Controller) Shutdown() {
	c.cancel()
	c.Stop()
}

// Clear empties the queue. A task already downloading still runs to
// completion and reports its outcome, but is no longer tracked as current.
func (c *Controller) Clear() {
	c.mu.Lock()
	dropped := len(c.pending)
	if c.current != nil {
		dropped++
	}
	c.pending = nil
	c.current = nil
	c.persistLocked()
	event := c.stateEventLocked()
	c.sink.Publish(model.Event{Kind: model.EventQueueCleared, Queued: 0, State: event.State, Affordances: event.Affordances})
	c.sink.Publish(event)
	c.mu.Unlock()

	c.logger.Info("queue cleared", "dropped", dropped)
}

// Snapshot returns a copy of the queue and the worker state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Affordances reports which controls make sense right now
func (c *Controller) Affordances() model.Affordances {
	snap := c.Snapshot()
	return model.AffordancesFor(snap.State, snap.Queued())
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Pending: make([]model.Task, len(c.pending)),
		State:   c.stateLocked(),
	}
	copy(snap.Pending, c.pending)
	if c.current != nil {
		current := *c.current
		snap.Current = &current
	}
	return snap
}

func (c *Controller) stateLocked() model.WorkerState {
	switch {
	case c.done == nil:
		return model.WorkerIdle
	case c.stopping:
		return model.WorkerStopping
	case c.paused:
		return model.WorkerPaused
	default:
		return model.WorkerRunning
	}
}

func (c *Controller) stateEventLocked() model.Event {
	state := c.stateLocked()
	return model.Event{
		Kind:        model.EventState,
		State:       state,
		Queued:      len(c.pending),
		Affordances: model.AffordancesFor(state, len(c.pending)),
	}
}

// publishStateLocked emits the current state. Publishing under c.mu keeps
// state events in the order of the transitions behind them; sinks must not
// block or call back into the controller.
func (c *Controller) publishStateLocked() {
	c.sink.Publish(c.stateEventLocked())
}

// persistLocked writes the full queue. Failures keep the in-memory state;
// the next mutation writes everything again.
func (c *Controller) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultPersistTimeout)
	defer cancel()

	if err := c.store.Save(ctx, c.current, c.pending); err != nil {
		c.logger.Warn("failed to persist queue", "error", err)
		c.sink.Publish(model.Event{Kind: model.EventWarning, Err: err.Error(), Message: "queue could not be saved"})
	}
}

func (c *Controller) signalLocked() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

type nopSink struct{}

func (nopSink) Publish(model.Event)                {}
func (nopSink) Progress(string, model.Progress) {}
