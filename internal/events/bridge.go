package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ytget/yt-queue/internal/model"
)

// Handler consumes events on the UI thread
type Handler func(model.Event)

// Bridge is an ordered, non-blocking event mailbox
type Bridge struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	cond    *sync.Cond
	mailbox []model.Event
	meters  map[string]*Meter
	closed  bool
	done    chan struct{}

	handlersMu sync.RWMutex
	handlers   []Handler
}

// Option configures a Bridge
type Option func(*Bridge)

// WithClock overrides the time source used for timestamps and rates
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) {
		b.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// NewBridge creates a bridge and starts its pump
func NewBridge(dispatcher Dispatcher, opts ...Option) *Bridge {
	if dispatcher == nil {
		dispatcher = Inline
	}
	b := &Bridge{
		dispatcher: dispatcher,
		logger:     slog.Default(),
		now:        time.Now,
		meters:     make(map[string]*Meter),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "events")
	b.cond = sync.NewCond(&b.mu)

	go b.pump()
	return b
}

// Subscribe registers a handler for every subsequent event
func (b *Bridge) Subscribe(handler Handler) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish queues an event. It never blocks and drops events after Close.
func (b *Bridge) Publish(event model.Event) {
	if event.At.IsZero() {
		event.At = b.now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.logger.Debug("dropping event after close", "kind", event.Kind, "task", event.TaskID)
		return
	}
	switch {
	case event.Kind == model.EventTaskStarted:
		b.meters[event.TaskID] = NewMeter(b.now)
	case event.Kind.IsTerminal():
		delete(b.meters, event.TaskID)
	}
	b.mailbox = append(b.mailbox, event)
	b.cond.Signal()
}

// Progress converts a raw engine report into a progress, indeterminate,
// download-finished or warning event.
func (b *Bridge) Progress(taskID string, progress model.Progress) {
	switch progress.Status {
	case model.ProgressFinished:
		b.Publish(model.Event{
			Kind:       model.EventDownloadFinished,
			TaskID:     taskID,
			Percent:    100,
			Downloaded: progress.Downloaded,
			Total:      progress.Total,
			OutputPath: progress.Filename,
		})
		return
	case model.ProgressError:
		b.Publish(model.Event{
			Kind:   model.EventWarning,
			TaskID: taskID,
			Err:    "download engine reported an error",
		})
		return
	}

	rate := b.rate(taskID, progress.Downloaded)
	event := model.Event{
		Kind:       model.EventProgress,
		TaskID:     taskID,
		Rate:       rate,
		Downloaded: progress.Downloaded,
		Total:      progress.Total,
	}
	if percent, ok := Percent(progress.Downloaded, progress.Total); ok {
		event.Percent = percent
	} else {
		event.Kind = model.EventIndeterminate
	}
	b.Publish(event)
}

func (b *Bridge) rate(taskID string, downloaded int64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	meter, ok := b.meters[taskID]
	if !ok {
		meter = NewMeter(b.now)
		b.meters[taskID] = meter
	}
	return meter.Update(downloaded)
}

// Close delivers queued events and stops the pump
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()

	<-b.done
}

func (b *Bridge) pump() {
	defer close(b.done)

	for {
		b.mu.Lock()
		for len(b.mailbox) == 0 && !b.closed {
			b.cond.Wait()
		}
		if len(b.mailbox) == 0 && b.closed {
			b.mu.Unlock()
			return
		}
		batch := b.mailbox
		b.mailbox = nil
		b.mu.Unlock()

		for _, event := range batch {
			b.deliver(event)
		}
	}
}

func (b *Bridge) deliver(event model.Event) {
	b.handlersMu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.handlersMu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	b.dispatcher.Do(func() {
		for _, handler := range handlers {
			b.safeCall(handler, event)
		}
	})
}

func (b *Bridge) safeCall(handler Handler, event model.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "kind", event.Kind, "panic", r)
		}
	}()
	handler(event)
}
