package model

// WorkerState represents the lifecycle state of the queue worker
type WorkerState string

const (
	// WorkerIdle means no worker execution unit is alive
	WorkerIdle WorkerState = "Idle"

	// WorkerRunning means the worker is draining the queue
	WorkerRunning WorkerState = "Running"

	// WorkerPaused means the worker is alive but will not dequeue the next task
	WorkerPaused WorkerState = "Paused"

	// WorkerStopping means a stop was requested and the worker has not exited yet
	WorkerStopping WorkerState = "Stopping"

	// WorkerStopped is reported as the reason of a queue-finished event when
	// the loop ended because of a stop request. The resting state afterwards is Idle.
	WorkerStopped WorkerState = "Stopped"
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	return string(ws)
}

// IsAlive returns true if a worker execution unit exists in this state
func (ws WorkerState) IsAlive() bool {
	return ws == WorkerRunning || ws == WorkerPaused || ws == WorkerStopping
}

// Affordances tells the UI which queue controls make sense right now
type Affordances struct {
	CanStart bool
	CanPause bool
	CanStop  bool
	CanClear bool
}

// AffordancesFor derives control availability from the worker state and queue size
func AffordancesFor(state WorkerState, queued int) Affordances {
	return Affordances{
		CanStart: (state == WorkerIdle || state == WorkerPaused) && queued > 0,
		CanPause: state == WorkerRunning,
		CanStop:  state == WorkerRunning || state == WorkerPaused,
		CanClear: queued > 0,
	}
}
