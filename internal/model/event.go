package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// EventKind identifies what an Event reports
type EventKind string

const (
	EventState             EventKind = "state"
	EventTaskStarted       EventKind = "task_started"
	EventProgress          EventKind = "progress"
	EventIndeterminate     EventKind = "indeterminate"
	EventDownloadFinished  EventKind = "download_finished"
	EventTaskSucceeded     EventKind = "task_succeeded"
	EventTaskFailed        EventKind = "task_failed"
	EventQueueCleared      EventKind = "queue_cleared"
	EventQueueFinished     EventKind = "queue_finished"
	EventLog               EventKind = "log"
	EventWarning           EventKind = "warning"
	EventTranscodeProgress EventKind = "transcode_progress"
	EventTranscodeFinished EventKind = "transcode_finished"
	EventTranscodeFailed   EventKind = "transcode_failed"
)

// IsTerminal reports whether the event ends a task or job
func (k EventKind) IsTerminal() bool {
	return k == EventTaskSucceeded || k == EventTaskFailed ||
		k == EventTranscodeFinished || k == EventTranscodeFailed
}

// Event is a discrete notification delivered to the UI thread
type Event struct {
	Kind        EventKind
	TaskID      string
	Percent     int     // 0 to 100, only meaningful for progress events
	Rate        float64 // bytes per second
	Downloaded  int64
	Total       int64
	OutputPath  string
	Err         string
	Message     string
	State       WorkerState
	Queued      int
	Affordances Affordances
	At          time.Time
}

// ProgressStatus is the engine-reported phase of a download
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressFinished    ProgressStatus = "finished"
	ProgressError       ProgressStatus = "error"
)

// Progress is a raw progress report from the download engine
type Progress struct {
	Status     ProgressStatus
	Downloaded int64
	Total      int64 // 0 when unknown
	Filename   string
}

// Placeholder is shown for sizes and rates that are not known yet
const Placeholder = "—"

// FormatRate renders a transfer rate, or Placeholder when unknown
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 || math.IsNaN(bytesPerSecond) || math.IsInf(bytesPerSecond, 0) {
		return Placeholder
	}
	return humanize.Bytes(uint64(bytesPerSecond)) + "/s"
}

// FormatSize renders a byte count such as "12 MB"
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return Placeholder
	}
	return humanize.Bytes(uint64(bytes))
}

// String renders the event for a log line
func (e Event) String() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.TaskID != "" {
		b.WriteString(" " + e.TaskID)
	}
	switch e.Kind {
	case EventProgress, EventTranscodeProgress:
		b.WriteString(fmt.Sprintf(" %d%% %s", e.Percent, FormatRate(e.Rate)))
	case EventTaskFailed, EventTranscodeFailed, EventWarning:
		b.WriteString(": " + e.Err)
	case EventState, EventQueueFinished:
		b.WriteString(fmt.Sprintf(" %s queued=%d", e.State, e.Queued))
	}
	if e.Message != "" {
		b.WriteString(" " + e.Message)
	}
	return b.String()
}
