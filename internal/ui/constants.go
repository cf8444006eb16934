package ui

import (
	"time"

	"github.com/ytget/yt-queue/internal/model"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = model.Placeholder
	ProgressLabelFormat = "%d%%"
)

// Row statuses
const (
	StatusQueued      = "Queued"
	StatusDownloading = "Downloading"
	StatusProcessing  = "Processing"
	StatusDone        = "Done"
	StatusFailed      = "Failed"
)

// Layout sizing
const (
	StatusLabelWidth float32 = 96
	RateLabelWidth   float32 = 110

	WindowWidth  float32 = 820
	WindowHeight float32 = 600

	DialogWidth  float32 = 520
	DialogHeight float32 = 420
)

// Behaviour
const (
	PlaylistExpandTimeout = 2 * time.Minute
	EngineTaskTimeout     = 2 * time.Minute
	HistoryLimit          = 100
)
