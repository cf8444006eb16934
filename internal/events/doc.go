// Package events carries notifications from background workers to the UI
// thread. Publishers never block: events are queued in an unbounded mailbox
// and a single pump goroutine hands them, in order, to a Dispatcher.
package events
