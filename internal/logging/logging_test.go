package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		env        string
		debugShown bool
	}{
		{EnvLocal, true},
		{EnvDebug, true},
		{EnvProd, false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(tt.env, &buf)
			log.Debug("debug line")

			if shown := buf.Len() > 0; shown != tt.debugShown {
				t.Errorf("debug shown = %v, want %v (output %q)", shown, tt.debugShown, buf.String())
			}
		})
	}
}

func TestNew_ProdIsJSON(t *testing.T) {
	var buf bytes.Buffer
	New(EnvProd, &buf).Info("queue hydrated", "tasks", 3)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "queue hydrated" || record["tasks"] != float64(3) {
		t.Errorf("Unexpected record %v", record)
	}
}

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With("component", "queue")

	log.Warn("failed to persist queue", "error", errors.New("disk full"))

	out := buf.String()
	for _, want := range []string{"WARN:", "failed to persist queue", `"component": "queue"`, `"error": "disk full"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output %q", want, out)
		}
	}
}

func TestPrettyHandler_WithAttrsAccumulates(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelInfo}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With("component", "queue").With("task", "task-1")

	log.Info("download started")
	log.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, `"component": "queue"`) || !strings.Contains(out, `"task": "task-1"`) {
		t.Errorf("Expected both attrs in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("Debug record should be filtered at info level")
	}
}
