package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaType is the requested output container or audio format
type MediaType string

// Audio-only formats
const (
	MediaMP3 MediaType = "mp3"
	MediaOGG MediaType = "ogg"
	MediaWAV MediaType = "wav"
	MediaM4A MediaType = "m4a"
)

// Audio+video formats
const (
	MediaMP4  MediaType = "mp4"
	MediaWebM MediaType = "webm"
	MediaMKV  MediaType = "mkv"
)

// Quality selectors
const (
	QualityBest  = "best"
	QualityWorst = "worst"
)

// Advanced option defaults
const (
	DefaultAudioQuality     = "192"
	DefaultSubtitleFormat   = "srt"
	DefaultSubtitleLangs    = "all"
	DefaultFilenameTemplate = "%(title)s.%(ext)s"
	TaskIDPrefix            = "task-"
)

// Validation errors
var (
	ErrMissingURL            = errors.New("url is required")
	ErrMissingMediaType      = errors.New("media type is required")
	ErrUnsupportedMediaType  = errors.New("unsupported media type")
	ErrMissingDestination    = errors.New("destination directory is required")
	ErrInvalidQuality        = errors.New("quality must be best, worst or a height")
	ErrInvalidTimeRange      = errors.New("invalid time range")
	ErrInvalidSubtitleFormat = errors.New("unsupported subtitle format")
)

var (
	audioTypes      = []MediaType{MediaMP3, MediaOGG, MediaWAV, MediaM4A}
	videoTypes      = []MediaType{MediaMP4, MediaWebM, MediaMKV}
	subtitleFormats = []string{"srt", "vtt", "ass", "lrc"}
)

// AudioTypes returns the audio-only media types
func AudioTypes() []MediaType {
	return append([]MediaType(nil), audioTypes...)
}

// VideoTypes returns the audio+video media types
func VideoTypes() []MediaType {
	return append([]MediaType(nil), videoTypes...)
}

// SubtitleFormats returns the accepted subtitle formats
func SubtitleFormats() []string {
	return append([]string(nil), subtitleFormats...)
}

// IsAudio reports whether the type is an audio-only format
func (mt MediaType) IsAudio() bool {
	for _, t := range audioTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// IsVideo reports whether the type is an audio+video container
func (mt MediaType) IsVideo() bool {
	for _, t := range videoTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// TimeRange is a clip window in seconds from the start of the media
type TimeRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewTimeRange parses clip bounds. Both bounds are required; empty input on
// both sides yields a nil range.
func NewTimeRange(start, end string) (*TimeRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, fmt.Errorf("%w: both start and end are required", ErrInvalidTimeRange)
	}

	s, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return nil, err
	}

	tr := &TimeRange{Start: s, End: e}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

// Validate checks that the range is non-empty and ordered
func (tr *TimeRange) Validate() error {
	if tr.Start < 0 || tr.End <= tr.Start {
		return fmt.Errorf("%w: end %d must be after start %d", ErrInvalidTimeRange, tr.End, tr.Start)
	}
	return nil
}

// Duration returns the clip length
func (tr *TimeRange) Duration() time.Duration {
	return time.Duration(tr.End-tr.Start) * time.Second
}

// ParseClock converts HH:MM:SS, MM:SS or SS into seconds
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, value)
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, value)
		}
		total = total*60 + n
	}
	return total, nil
}

// AdvancedOptions holds per-task engine options. The zero value is valid and
// Normalize fills in the defaults.
type AdvancedOptions struct {
	Playlist         bool       `json:"playlist"`
	Subtitles        bool       `json:"subtitles"`
	SubtitleFormat   string     `json:"subtitle_format,omitempty"`
	SubtitleLangs    string     `json:"subtitle_langs,omitempty"`
	Metadata         bool       `json:"metadata"`
	AudioQuality     string     `json:"audio_quality,omitempty"`
	Clip             *TimeRange `json:"clip,omitempty"`
	Proxy            string     `json:"proxy,omitempty"`
	CookieFile       string     `json:"cookie_file,omitempty"`
	FilenameTemplate string     `json:"filename_template,omitempty"`
	HWAccel          string     `json:"hwaccel,omitempty"`
}

// Task is one requested download. Tasks are values: once created they are
// replaced or removed, never mutated.
type Task struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	MediaType   MediaType       `json:"media_type"`
	Quality     string          `json:"quality,omitempty"`
	Codec       string          `json:"codec,omitempty"`
	Destination string          `json:"destination"`
	Threads     int             `json:"threads,omitempty"`
	Options     AdvancedOptions `json:"options"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTask creates a task with a fresh ID and creation time and defaults applied
func NewTask(url string, mediaType MediaType, quality, destination string, opts AdvancedOptions) Task {
	t := Task{
		ID:          GenerateID(TaskIDPrefix),
		URL:         strings.TrimSpace(url),
		MediaType:   MediaType(strings.ToLower(strings.TrimSpace(string(mediaType)))),
		Quality:     strings.TrimSpace(quality),
		Destination: strings.TrimSpace(destination),
		Options:     opts,
		CreatedAt:   time.Now(),
	}
	return t.Normalize()
}

// WithCodec returns a copy of the task with the codec override set
func (t Task) WithCodec(codec string) Task {
	t.Codec = strings.TrimSpace(codec)
	return t
}

// WithThreads returns a copy of the task with the thread hint set
func (t Task) WithThreads(threads int) Task {
	t.Threads = threads
	return t
}

// Normalize returns a copy with defaults filled for missing optional fields
func (t Task) Normalize() Task {
	if t.ID == "" {
		t.ID = GenerateID(TaskIDPrefix)
	}
	if t.Quality == "" {
		t.Quality = QualityBest
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Options.SubtitleFormat == "" {
		t.Options.SubtitleFormat = DefaultSubtitleFormat
	}
	if t.Options.SubtitleLangs == "" {
		t.Options.SubtitleLangs = DefaultSubtitleLangs
	}
	if t.Options.AudioQuality == "" {
		t.Options.AudioQuality = DefaultAudioQuality
	}
	if t.Options.FilenameTemplate == "" {
		t.Options.FilenameTemplate = DefaultFilenameTemplate
	}
	return t
}

// Validate checks required fields and option consistency
func (t Task) Validate() error {
	var errs []error

	if strings.TrimSpace(t.URL) == "" {
		errs = append(errs, ErrMissingURL)
	}
	switch {
	case t.MediaType == "":
		errs = append(errs, ErrMissingMediaType)
	case !t.MediaType.IsAudio() && !t.MediaType.IsVideo():
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, t.MediaType))
	}
	if strings.TrimSpace(t.Destination) == "" {
		errs = append(errs, ErrMissingDestination)
	}
	if !IsValidQuality(t.Quality) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidQuality, t.Quality))
	}
	if t.Options.Clip != nil {
		if err := t.Options.Clip.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.Options.Subtitles && !isSubtitleFormat(t.Options.SubtitleFormat) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidSubtitleFormat, t.Options.SubtitleFormat))
	}

	return errors.Join(errs...)
}

// IsValidQuality accepts best, worst, empty (best) or a positive height
func IsValidQuality(q string) bool {
	if q == "" || q == QualityBest || q == QualityWorst {
		return true
	}
	n, err := strconv.Atoi(q)
	return err == nil && n > 0
}

// GetDisplayTitle returns a short label for the task
func (t Task) GetDisplayTitle() string {
	label := strings.TrimSpace(t.URL)
	if label == "" {
		return t.ID
	}
	return fmt.Sprintf("%s [%s %s]", label, t.MediaType, t.Quality)
}

func isSubtitleFormat(format string) bool {
	for _, f := range subtitleFormats {
		if f == format {
			return true
		}
	}
	return false
}

// GenerateID generates a prefixed UUID v7, which is time ordered
func GenerateID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
	}
	return prefix + id.String()
}
