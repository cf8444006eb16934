package model

import "testing"

func TestWorkerState_IsAlive(t *testing.T) {
	tests := []struct {
		state    WorkerState
		expected bool
	}{
		{WorkerIdle, false},
		{WorkerRunning, true},
		{WorkerPaused, true},
		{WorkerStopping, true},
		{WorkerStopped, false},
	}

	for _, test := range tests {
		result := test.state.IsAlive()
		if result != test.expected {
			t.Errorf("WorkerState(%s).IsAlive() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestWorkerState_String(t *testing.T) {
	if WorkerPaused.String() != "Paused" {
		t.Errorf("WorkerState.String() = %s, expected Paused", WorkerPaused.String())
	}
}

func TestAffordancesFor(t *testing.T) {
	tests := []struct {
		name     string
		state    WorkerState
		queued   int
		expected Affordances
	}{
		{"idle empty", WorkerIdle, 0, Affordances{}},
		{"idle with items", WorkerIdle, 2, Affordances{CanStart: true, CanClear: true}},
		{"running", WorkerRunning, 1, Affordances{CanPause: true, CanStop: true, CanClear: true}},
		{"paused", WorkerPaused, 1, Affordances{CanStart: true, CanStop: true, CanClear: true}},
		{"paused empty", WorkerPaused, 0, Affordances{CanStop: true}},
		{"stopping", WorkerStopping, 3, Affordances{CanClear: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AffordancesFor(tt.state, tt.queued)
			if got != tt.expected {
				t.Errorf("AffordancesFor(%s, %d) = %+v, expected %+v", tt.state, tt.queued, got, tt.expected)
			}
		})
	}
}
