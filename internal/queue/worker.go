package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/ytget/yt-queue/internal/download"
	"github.com/ytget/yt-queue/internal/model"
)

type step int

const (
	stepRun step = iota
	stepPause
	stepExit
)

// run is the worker loop. It exits when the queue is exhausted or Stop was
// requested; no task outcome ends it.
func (c *Controller) run(done chan struct{}) {
	var reason model.WorkerState
	for {
		task, next, exitReason := c.next(done)
		if next == stepExit {
			reason = exitReason
			break
		}
		if next == stepPause {
			c.waitWhilePaused()
			continue
		}
		c.process(task)
	}

	c.logger.Info("worker exited", "reason", reason)

	close(done)
	c.mu.Lock()
	if c.exiting == done {
		c.exiting = nil
	}
	c.mu.Unlock()
}

// next dequeues the head of the queue. On exit it detaches the worker and
// publishes queue_finished in the same critical section, so a concurrent
// Start always launches a new one and its events follow the finish.
func (c *Controller) next(done chan struct{}) (model.Task, step, model.WorkerState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.stopping || c.ctx.Err() != nil:
		c.finishLocked(done, model.WorkerStopped)
		return model.Task{}, stepExit, model.WorkerStopped
	case c.paused:
		return model.Task{}, stepPause, ""
	case len(c.pending) == 0:
		c.finishLocked(done, model.WorkerIdle)
		return model.Task{}, stepExit, model.WorkerIdle
	}

	task := c.pending[0]
	c.pending = c.pending[1:]
	c.current = &task
	c.persistLocked()
	return task, stepRun, ""
}

// finishLocked detaches the worker and reports why it stopped. Stop keeps
// waiting on done through c.exiting until run closes it.
func (c *Controller) finishLocked(done chan struct{}, reason model.WorkerState) {
	if c.done == done {
		c.done = nil
		c.paused = false
		c.stopping = false
	}
	c.exiting = done

	event := c.stateEventLocked()
	event.Kind = model.EventQueueFinished
	event.Message = string(reason)
	event.State = reason
	c.sink.Publish(event)
}

func (c *Controller) waitWhilePaused() {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	select {
	case <-c.wake:
	case <-timer.C:
	case <-c.ctx.Done():
	}
}

func (c *Controller) process(task model.Task) {
	logger := c.logger.With("task", task.ID, "url", task.URL)

	c.mu.Lock()
	started := c.stateEventLocked()
	started.Kind = model.EventTaskStarted
	started.TaskID = task.ID
	started.Message = task.GetDisplayTitle()
	c.sink.Publish(started)
	c.mu.Unlock()

	if err := task.Validate(); err != nil {
		logger.Warn("skipping invalid task", "error", err)
		c.complete(task, download.Result{}, err)
		return
	}

	logger.Info("download started", "media_type", task.MediaType, "quality", task.Quality)
	result, err := c.invoke(task)

	if err != nil && c.ctx.Err() != nil {
		// Shutdown: leave the task stored as current so it is retried on restart
		logger.Info("download abandoned by shutdown")
		return
	}
	c.complete(task, result, err)
}

func (c *Controller) invoke(task model.Task) (result download.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEnginePanic, r)
		}
	}()

	req := download.BuildRequest(task, c.engineOpts)
	onProgress := func(p model.Progress) {
		c.sink.Progress(task.ID, p)
	}
	onLog := func(line string) {
		c.sink.Publish(model.Event{Kind: model.EventLog, TaskID: task.ID, Message: line})
	}
	return c.engine.Download(c.ctx, req, onProgress, onLog)
}

// complete clears the current slot and reports the outcome exactly once.
// After Clear the slot no longer holds task and is left alone.
func (c *Controller) complete(task model.Task, result download.Result, taskErr error) {
	c.mu.Lock()
	if c.current != nil && c.current.ID == task.ID {
		c.current = nil
	}
	c.persistLocked()
	state := c.stateEventLocked()
	event := model.Event{
		TaskID:      task.ID,
		OutputPath:  result.OutputPath,
		State:       state.State,
		Queued:      state.Queued,
		Affordances: state.Affordances,
	}
	if taskErr != nil {
		c.logger.Error("download failed", "task", task.ID, "error", taskErr)
		event.Kind = model.EventTaskFailed
		event.Err = taskErr.Error()
	} else {
		c.logger.Info("download finished", "task", task.ID, "output", result.OutputPath)
		event.Kind = model.EventTaskSucceeded
	}
	c.sink.Publish(event)
	c.mu.Unlock()

	if c.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultPersistTimeout)
		defer cancel()
		if err := c.recorder.Record(ctx, task, result.OutputPath, taskErr); err != nil {
			c.logger.Warn("failed to record history", "task", task.ID, "error", err)
		}
	}
}
