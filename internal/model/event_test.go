package model

import (
	"math"
	"strings"
	"testing"
)

func TestFormatRate(t *testing.T) {
	tests := []struct {
		rate     float64
		expected string
	}{
		{0, Placeholder},
		{-1, Placeholder},
		{math.NaN(), Placeholder},
		{math.Inf(1), Placeholder},
		{512, "512 B/s"},
		{1500, "1.5 kB/s"},
		{2_000_000, "2.0 MB/s"},
	}

	for _, test := range tests {
		if got := FormatRate(test.rate); got != test.expected {
			t.Errorf("FormatRate(%v) = %q, expected %q", test.rate, got, test.expected)
		}
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(0); got != Placeholder {
		t.Errorf("FormatSize(0) = %q", got)
	}
	if got := FormatSize(1_000_000); got != "1.0 MB" {
		t.Errorf("FormatSize(1e6) = %q, expected 1.0 MB", got)
	}
}

func TestEventKind_IsTerminal(t *testing.T) {
	terminal := []EventKind{EventTaskSucceeded, EventTaskFailed, EventTranscodeFinished, EventTranscodeFailed}
	for _, k := range terminal {
		if !k.IsTerminal() {
			t.Errorf("%s should be terminal", k)
		}
	}
	for _, k := range []EventKind{EventProgress, EventTaskStarted, EventQueueFinished} {
		if k.IsTerminal() {
			t.Errorf("%s should not be terminal", k)
		}
	}
}

func TestEvent_String(t *testing.T) {
	ev := Event{Kind: EventTaskFailed, TaskID: "task-1", Err: "boom"}
	if got := ev.String(); got != "task_failed task-1: boom" {
		t.Errorf("String() = %q", got)
	}

	ev = Event{Kind: EventProgress, TaskID: "task-1", Percent: 25}
	if got := ev.String(); !strings.HasPrefix(got, "progress task-1 25%") {
		t.Errorf("String() = %q", got)
	}
}
