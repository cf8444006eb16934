package config

import (
	"strings"

	"fyne.io/fyne/v2"

	"github.com/ytget/yt-queue/internal/model"
	"github.com/ytget/yt-queue/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyMediaType          = "media_type"
	KeyQuality            = "quality"
	KeyThreads            = "threads"
	KeyAudioQuality       = "audio_quality"
	KeySubtitleFormat     = "subtitle_format"
	KeyFilenameTemplate   = "filename_template"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
	KeyAutoStart          = "auto_start_queue"
)

// Default values
const (
	DefaultMediaType          = model.MediaMP4
	DefaultQuality            = model.QualityBest
	DefaultThreads            = 0
	MaxThreads                = 32
	DefaultAutoRevealComplete = false
	DefaultAutoStart          = false
)

// Settings manages the per-user task defaults stored in Fyne preferences
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/downloads"
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetMediaType returns the default output format
func (s *Settings) GetMediaType() model.MediaType {
	mt := model.MediaType(s.app.Preferences().String(KeyMediaType))
	if !mt.IsAudio() && !mt.IsVideo() {
		return DefaultMediaType
	}
	return mt
}

// SetMediaType sets the default output format; unsupported values are ignored
func (s *Settings) SetMediaType(mt model.MediaType) {
	mt = model.MediaType(strings.ToLower(string(mt)))
	if !mt.IsAudio() && !mt.IsVideo() {
		return
	}
	s.app.Preferences().SetString(KeyMediaType, string(mt))
}

// GetQuality returns the default quality
func (s *Settings) GetQuality() string {
	q := s.app.Preferences().StringWithFallback(KeyQuality, DefaultQuality)
	if q == "" || !model.IsValidQuality(q) {
		return DefaultQuality
	}
	return q
}

// SetQuality sets the default quality; invalid values reset it to best
func (s *Settings) SetQuality(q string) {
	q = strings.TrimSpace(q)
	if !model.IsValidQuality(q) || q == "" {
		q = DefaultQuality
	}
	s.app.Preferences().SetString(KeyQuality, q)
}

// GetThreads returns the post-processing thread hint, 0 for the engine default
func (s *Settings) GetThreads() int {
	return s.app.Preferences().IntWithFallback(KeyThreads, DefaultThreads)
}

// SetThreads sets the thread hint, clamped to [0, MaxThreads]
func (s *Settings) SetThreads(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxThreads {
		n = MaxThreads
	}
	s.app.Preferences().SetInt(KeyThreads, n)
}

// GetAudioQuality returns the audio extraction bitrate in kbps
func (s *Settings) GetAudioQuality() string {
	return s.app.Preferences().StringWithFallback(KeyAudioQuality, model.DefaultAudioQuality)
}

// SetAudioQuality sets the audio bitrate
func (s *Settings) SetAudioQuality(q string) {
	if q == "" {
		q = model.DefaultAudioQuality
	}
	s.app.Preferences().SetString(KeyAudioQuality, q)
}

// GetSubtitleFormat returns the subtitle format
func (s *Settings) GetSubtitleFormat() string {
	return s.app.Preferences().StringWithFallback(KeySubtitleFormat, model.DefaultSubtitleFormat)
}

// SetSubtitleFormat sets the subtitle format; unknown formats are ignored
func (s *Settings) SetSubtitleFormat(format string) {
	for _, f := range model.SubtitleFormats() {
		if f == format {
			s.app.Preferences().SetString(KeySubtitleFormat, format)
			return
		}
	}
}

// GetFilenameTemplate returns the filename template
func (s *Settings) GetFilenameTemplate() string {
	template := s.app.Preferences().String(KeyFilenameTemplate)
	if template == "" {
		s.SetFilenameTemplate(model.DefaultFilenameTemplate)
		return model.DefaultFilenameTemplate
	}
	return template
}

// SetFilenameTemplate sets the filename template
func (s *Settings) SetFilenameTemplate(template string) {
	if template == "" {
		template = model.DefaultFilenameTemplate
	}
	s.app.Preferences().SetString(KeyFilenameTemplate, template)
}

// GetAutoRevealOnComplete returns whether to auto-reveal completed downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to auto-reveal completed downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetAutoStart returns whether a restored queue starts without user action
func (s *Settings) GetAutoStart() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoStart, DefaultAutoStart)
}

// SetAutoStart sets whether a restored queue starts automatically
func (s *Settings) SetAutoStart(autoStart bool) {
	s.app.Preferences().SetBool(KeyAutoStart, autoStart)
}

// NewTask builds a task for url from the stored defaults
func (s *Settings) NewTask(url string) model.Task {
	return s.NewTaskWithOptions(url, model.AdvancedOptions{})
}

// NewTaskWithOptions builds a task for url, filling options left empty
// from the stored defaults
func (s *Settings) NewTaskWithOptions(url string, opts model.AdvancedOptions) model.Task {
	if opts.AudioQuality == "" {
		opts.AudioQuality = s.GetAudioQuality()
	}
	if opts.SubtitleFormat == "" {
		opts.SubtitleFormat = s.GetSubtitleFormat()
	}
	if opts.FilenameTemplate == "" {
		opts.FilenameTemplate = s.GetFilenameTemplate()
	}
	return model.NewTask(url, s.GetMediaType(), s.GetQuality(), s.GetDownloadDirectory(), opts).
		WithThreads(s.GetThreads())
}
