package events

// Dispatcher runs fn on the thread that owns the UI
type Dispatcher interface {
	Do(fn func())
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(fn func())

// Do calls f(fn)
func (f DispatcherFunc) Do(fn func()) {
	f(fn)
}

// Inline runs handlers directly on the pump goroutine. Used by tests and headless runs.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })
