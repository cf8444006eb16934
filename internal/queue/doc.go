// Package queue implements the persistent single-worker download queue.
//
// A Controller owns the pending tasks and the task currently being
// downloaded. Every mutation is written through to a store.Store as
// "current followed by pending", so a restart re-offers an interrupted task
// first. At most one worker goroutine runs at a time; it hands tasks to a
// download.Engine in FIFO order and reports everything through a Sink.
package queue
