package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewTask_Defaults(t *testing.T) {
	before := time.Now()
	task := NewTask(" https://youtube.com/watch?v=test ", "MP4", "", "/tmp/out", AdvancedOptions{})

	if !strings.HasPrefix(task.ID, TaskIDPrefix) {
		t.Errorf("Expected ID to start with %q, got %q", TaskIDPrefix, task.ID)
	}
	if task.URL != "https://youtube.com/watch?v=test" {
		t.Errorf("Expected trimmed URL, got %q", task.URL)
	}
	if task.MediaType != MediaMP4 {
		t.Errorf("Expected media type mp4, got %s", task.MediaType)
	}
	if task.Quality != QualityBest {
		t.Errorf("Expected default quality best, got %s", task.Quality)
	}
	if task.Options.AudioQuality != DefaultAudioQuality {
		t.Errorf("Expected audio quality %s, got %s", DefaultAudioQuality, task.Options.AudioQuality)
	}
	if task.Options.SubtitleFormat != DefaultSubtitleFormat {
		t.Errorf("Expected subtitle format %s, got %s", DefaultSubtitleFormat, task.Options.SubtitleFormat)
	}
	if task.Options.FilenameTemplate != DefaultFilenameTemplate {
		t.Errorf("Expected filename template %s, got %s", DefaultFilenameTemplate, task.Options.FilenameTemplate)
	}
	if task.CreatedAt.Before(before) {
		t.Errorf("Expected CreatedAt after %v, got %v", before, task.CreatedAt)
	}
}

func TestNewTask_UniqueIDs(t *testing.T) {
	a := NewTask("https://a", MediaMP3, "", "/tmp", AdvancedOptions{})
	b := NewTask("https://a", MediaMP3, "", "/tmp", AdvancedOptions{})
	if a.ID == b.ID {
		t.Error("Expected different task IDs")
	}
}

func TestTask_WithDoesNotMutate(t *testing.T) {
	task := NewTask("https://a", MediaMKV, "720", "/tmp", AdvancedOptions{})
	changed := task.WithCodec("vp9").WithThreads(4)

	if task.Codec != "" || task.Threads != 0 {
		t.Errorf("Original task was mutated: %+v", task)
	}
	if changed.Codec != "vp9" || changed.Threads != 4 {
		t.Errorf("Expected codec vp9 and 4 threads, got %s/%d", changed.Codec, changed.Threads)
	}
}

func TestTask_Validate(t *testing.T) {
	valid := NewTask("https://a", MediaMP4, "1080", "/tmp", AdvancedOptions{})

	tests := []struct {
		name    string
		mutate  func(Task) Task
		wantErr error
	}{
		{"valid", func(t Task) Task { return t }, nil},
		{"missing url", func(t Task) Task { t.URL = " "; return t }, ErrMissingURL},
		{"missing media type", func(t Task) Task { t.MediaType = ""; return t }, ErrMissingMediaType},
		{"unsupported media type", func(t Task) Task { t.MediaType = "avi"; return t }, ErrUnsupportedMediaType},
		{"missing destination", func(t Task) Task { t.Destination = ""; return t }, ErrMissingDestination},
		{"bad quality", func(t Task) Task { t.Quality = "hd"; return t }, ErrInvalidQuality},
		{"worst quality", func(t Task) Task { t.Quality = QualityWorst; return t }, nil},
		{"bad clip", func(t Task) Task { t.Options.Clip = &TimeRange{Start: 10, End: 5}; return t }, ErrInvalidTimeRange},
		{"bad subtitle format", func(t Task) Task {
			t.Options.Subtitles = true
			t.Options.SubtitleFormat = "sub"
			return t
		}, ErrInvalidSubtitleFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTask_ValidateCollectsAllErrors(t *testing.T) {
	err := Task{}.Validate()
	for _, want := range []error{ErrMissingURL, ErrMissingMediaType, ErrMissingDestination} {
		if !errors.Is(err, want) {
			t.Errorf("Expected joined error to contain %v, got %v", want, err)
		}
	}
}

func TestMediaType_Category(t *testing.T) {
	for _, mt := range AudioTypes() {
		if !mt.IsAudio() || mt.IsVideo() {
			t.Errorf("%s should be audio only", mt)
		}
	}
	for _, mt := range VideoTypes() {
		if !mt.IsVideo() || mt.IsAudio() {
			t.Errorf("%s should be video", mt)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"45", 45, false},
		{"01:30", 90, false},
		{"01:01:01", 3661, false},
		{"00:00:00", 0, false},
		{"1:2:3:4", 0, true},
		{"ab", 0, true},
		{"", 0, true},
		{"-5", 0, true},
	}

	for _, test := range tests {
		got, err := ParseClock(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if got != test.expected {
			t.Errorf("ParseClock(%q) = %d, expected %d", test.input, got, test.expected)
		}
	}
}

func TestNewTimeRange(t *testing.T) {
	tr, err := NewTimeRange("", "")
	if err != nil || tr != nil {
		t.Errorf("Expected nil range for empty bounds, got %v, %v", tr, err)
	}

	if _, err := NewTimeRange("00:10", ""); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("Expected ErrInvalidTimeRange for half range, got %v", err)
	}

	if _, err := NewTimeRange("00:20", "00:10"); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("Expected ErrInvalidTimeRange for reversed range, got %v", err)
	}

	tr, err = NewTimeRange("00:10", "01:00")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tr.Start != 10 || tr.End != 60 {
		t.Errorf("Expected 10-60, got %d-%d", tr.Start, tr.End)
	}
	if tr.Duration() != 50*time.Second {
		t.Errorf("Expected 50s duration, got %v", tr.Duration())
	}
}

func TestTask_GetDisplayTitle(t *testing.T) {
	task := Task{ID: "task-1", URL: "https://youtube.com/watch?v=123", MediaType: MediaMP3, Quality: "best"}
	if got := task.GetDisplayTitle(); got != "https://youtube.com/watch?v=123 [mp3 best]" {
		t.Errorf("GetDisplayTitle() = %q", got)
	}

	if got := (Task{ID: "task-2"}).GetDisplayTitle(); got != "task-2" {
		t.Errorf("GetDisplayTitle() without URL = %q, expected task-2", got)
	}
}
