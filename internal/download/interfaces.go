package download

import (
	"context"
	"time"

	"github.com/ytget/yt-queue/internal/model"
)

// Engine tuning defaults
const (
	DefaultRetries             = 10
	DefaultFragmentRetries     = 10
	DefaultConcurrentFragments = 8
	DefaultProgressInterval    = 500 * time.Millisecond
	DefaultHTTPChunkSize       = "1M"
	DefaultExtractorArgs       = "youtube:player_client=android;player_skip=js"
)

// Engine downloads a single request. It blocks until the engine exits;
// onProgress and onLog are called from the engine goroutine.
type Engine interface {
	Download(ctx context.Context, req Request, onProgress func(model.Progress), onLog func(string)) (Result, error)
}

// EngineOptions holds settings shared by every request
type EngineOptions struct {
	Retries             int
	FragmentRetries     int
	ConcurrentFragments int
	ProgressInterval    time.Duration
	HTTPChunkSize       string // e.g. "1M"; empty lets yt-dlp decide
	ExtractorArgs       string // yt-dlp --extractor-args value
}

// DefaultEngineOptions returns the stock engine settings
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Retries:             DefaultRetries,
		FragmentRetries:     DefaultFragmentRetries,
		ConcurrentFragments: DefaultConcurrentFragments,
		ProgressInterval:    DefaultProgressInterval,
		HTTPChunkSize:       DefaultHTTPChunkSize,
		ExtractorArgs:       DefaultExtractorArgs,
	}
}

// Request is an engine invocation described as plain data
type Request struct {
	TaskID string
	URL    string
	Output string // output template including the destination directory
	Format string

	ExtractAudio bool
	AudioFormat  string
	AudioQuality string
	RecodeVideo  string

	PostProcessorArgs []string

	Playlist bool

	WriteSubs bool
	SubLangs  string
	SubFormat string

	// Metadata sidecars
	WriteThumbnail   bool
	WriteInfoJSON    bool
	WriteDescription bool
	WriteAutoSubs    bool

	Proxy   string
	Cookies string

	Retries             int
	FragmentRetries     int
	ConcurrentFragments int
	HTTPChunkSize       string
	ExtractorArgs       string

	Sections             string // e.g. "*30-90"
	ForceKeyframesAtCuts bool
}

// Result describes what the engine produced
type Result struct {
	OutputPath string
}

// Maintainer covers engine upkeep outside of downloads
type Maintainer interface {
	// Sites lists the extractors the engine supports
	Sites(ctx context.Context) ([]string, error)
	// Update upgrades the engine and returns its report
	Update(ctx context.Context) (string, error)
}
