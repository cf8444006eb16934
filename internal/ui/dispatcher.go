package ui

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/yt-queue/internal/events"
)

// FyneDispatcher runs bridge deliveries on the Fyne main thread.
var FyneDispatcher events.Dispatcher = events.DispatcherFunc(fyne.Do)
