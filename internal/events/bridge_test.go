package events

import (
	"sync"
	"testing"
	"time"

	"github.com/ytget/yt-queue/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) handle(event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) all() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

func newTestBridge(t *testing.T, clock *fakeClock) (*Bridge, *recorder) {
	t.Helper()
	rec := &recorder{}
	b := NewBridge(Inline, WithClock(clock.Now))
	b.Subscribe(rec.handle)
	return b, rec
}

func TestPercent(t *testing.T) {
	tests := []struct {
		downloaded, total int64
		want              int
		ok                bool
	}{
		{50, 200, 25, true},
		{0, 200, 0, true},
		{199, 200, 99, true},
		{300, 200, 100, true},
		{10, 0, 0, false},
		{10, -1, 0, false},
	}

	for _, tt := range tests {
		got, ok := Percent(tt.downloaded, tt.total)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Percent(%d, %d) = %d, %v; want %d, %v", tt.downloaded, tt.total, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMeter_Rate(t *testing.T) {
	clock := newFakeClock()
	m := NewMeter(clock.Now)

	clock.Advance(time.Second)
	if rate := m.Update(1000); rate != 1000 {
		t.Errorf("Expected 1000 B/s, got %v", rate)
	}

	clock.Advance(2 * time.Second)
	if rate := m.Update(5000); rate != 2000 {
		t.Errorf("Expected 2000 B/s, got %v", rate)
	}
}

func TestMeter_ZeroElapsedGuard(t *testing.T) {
	clock := newFakeClock()
	m := NewMeter(clock.Now)

	rate := m.Update(10)
	want := 10 / MinElapsed.Seconds()
	if rate != want {
		t.Errorf("Expected rate %v with epsilon guard, got %v", want, rate)
	}
}

func TestMeter_RestartOnNewFile(t *testing.T) {
	clock := newFakeClock()
	m := NewMeter(clock.Now)

	clock.Advance(time.Second)
	m.Update(1000)
	clock.Advance(time.Second)
	if rate := m.Update(300); rate != 300 {
		t.Errorf("Expected 300 B/s after restart, got %v", rate)
	}
}

func TestBridge_ProgressPercent(t *testing.T) {
	clock := newFakeClock()
	b, rec := newTestBridge(t, clock)

	b.Publish(model.Event{Kind: model.EventTaskStarted, TaskID: "task-1"})
	clock.Advance(time.Second)
	b.Progress("task-1", model.Progress{Status: model.ProgressDownloading, Downloaded: 50, Total: 200})
	b.Close()

	events := rec.all()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	ev := events[1]
	if ev.Kind != model.EventProgress || ev.Percent != 25 {
		t.Errorf("Expected progress 25%%, got %s %d", ev.Kind, ev.Percent)
	}
	if ev.Rate != 50 {
		t.Errorf("Expected rate 50 B/s, got %v", ev.Rate)
	}
	if ev.TaskID != "task-1" || ev.At.IsZero() {
		t.Errorf("Unexpected event metadata: %+v", ev)
	}
}

func TestBridge_UnknownTotalIsIndeterminate(t *testing.T) {
	clock := newFakeClock()
	b, rec := newTestBridge(t, clock)

	b.Progress("task-1", model.Progress{Status: model.ProgressDownloading, Downloaded: 50, Total: 0})
	b.Close()

	events := rec.all()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Kind != model.EventIndeterminate {
		t.Errorf("Expected indeterminate event, got %s", events[0].Kind)
	}
	for _, ev := range events {
		if ev.Kind == model.EventProgress {
			t.Error("No percentage event expected for unknown total")
		}
	}
}

func TestBridge_FinishedAndError(t *testing.T) {
	clock := newFakeClock()
	b, rec := newTestBridge(t, clock)

	b.Progress("task-1", model.Progress{Status: model.ProgressFinished, Downloaded: 200, Total: 200, Filename: "/tmp/a.mp4"})
	b.Progress("task-1", model.Progress{Status: model.ProgressError})
	b.Close()

	events := rec.all()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Kind != model.EventDownloadFinished || events[0].Percent != 100 || events[0].OutputPath != "/tmp/a.mp4" {
		t.Errorf("Unexpected finished event: %+v", events[0])
	}
	if events[1].Kind != model.EventWarning || events[1].Err == "" {
		t.Errorf("Unexpected error event: %+v", events[1])
	}
}

func TestBridge_PreservesOrder(t *testing.T) {
	clock := newFakeClock()
	b, rec := newTestBridge(t, clock)

	const n = 500
	for i := 0; i <= n; i++ {
		b.Progress("task-1", model.Progress{Status: model.ProgressDownloading, Downloaded: int64(i), Total: n})
	}
	b.Close()

	events := rec.all()
	if len(events) != n+1 {
		t.Fatalf("Expected %d events, got %d", n+1, len(events))
	}
	for i, ev := range events {
		if ev.Downloaded != int64(i) {
			t.Fatalf("Event %d out of order: downloaded=%d", i, ev.Downloaded)
		}
	}
}

func TestBridge_PublishDoesNotBlockOnSlowHandler(t *testing.T) {
	release := make(chan struct{})
	b := NewBridge(Inline)
	b.Subscribe(func(model.Event) {
		<-release
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(model.Event{Kind: model.EventLog, Message: "line"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow handler")
	}

	close(release)
	b.Close()
}

func TestBridge_DispatcherIsUsed(t *testing.T) {
	var mu sync.Mutex
	dispatched := 0
	dispatcher := DispatcherFunc(func(fn func()) {
		mu.Lock()
		dispatched++
		mu.Unlock()
		fn()
	})

	rec := &recorder{}
	b := NewBridge(dispatcher)
	b.Subscribe(rec.handle)
	b.Publish(model.Event{Kind: model.EventState})
	b.Publish(model.Event{Kind: model.EventQueueCleared})
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	if dispatched != 2 {
		t.Errorf("Expected 2 dispatches, got %d", dispatched)
	}
	if len(rec.all()) != 2 {
		t.Errorf("Expected 2 events, got %d", len(rec.all()))
	}
}

func TestBridge_PublishAfterCloseIsDropped(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(Inline)
	b.Subscribe(rec.handle)
	b.Close()
	b.Close()

	b.Publish(model.Event{Kind: model.EventState})
	if len(rec.all()) != 0 {
		t.Errorf("Expected no events after close, got %d", len(rec.all()))
	}
}

func TestBridge_HandlerPanicIsContained(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(Inline)
	b.Subscribe(func(model.Event) { panic("boom") })
	b.Subscribe(rec.handle)

	b.Publish(model.Event{Kind: model.EventState})
	b.Publish(model.Event{Kind: model.EventState})
	b.Close()

	if got := len(rec.all()); got != 2 {
		t.Errorf("Expected the second handler to receive 2 events, got %d", got)
	}
}

func TestBridge_MeterResetsOnTaskStart(t *testing.T) {
	clock := newFakeClock()
	b, rec := newTestBridge(t, clock)

	clock.Advance(time.Second)
	b.Progress("task-1", model.Progress{Status: model.ProgressDownloading, Downloaded: 1000, Total: 2000})
	b.Publish(model.Event{Kind: model.EventTaskStarted, TaskID: "task-1"})
	clock.Advance(time.Second)
	b.Progress("task-1", model.Progress{Status: model.ProgressDownloading, Downloaded: 400, Total: 2000})
	b.Close()

	events := rec.all()
	last := events[len(events)-1]
	if last.Rate != 400 {
		t.Errorf("Expected rate 400 B/s from fresh meter, got %v", last.Rate)
	}
}
