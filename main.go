package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/yt-queue/internal/config"
	"github.com/ytget/yt-queue/internal/download"
	"github.com/ytget/yt-queue/internal/events"
	"github.com/ytget/yt-queue/internal/history"
	"github.com/ytget/yt-queue/internal/logging"
	"github.com/ytget/yt-queue/internal/platform"
	"github.com/ytget/yt-queue/internal/queue"
	"github.com/ytget/yt-queue/internal/store"
	"github.com/ytget/yt-queue/internal/transcode"
	"github.com/ytget/yt-queue/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.yt-queue"
	AppName = "YT Queue"
)

func main() {
	cfg := config.MustLoad()

	log := logging.Setup(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting", "version", version, "env", cfg.Env, "store", cfg.Store.Backend)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	settings := config.NewSettings(myApp)
	if err := platform.CreateDirectoryIfNotExists(settings.GetDownloadDirectory()); err != nil {
		log.Warn("failed to ensure downloads dir", "error", err)
	}

	bridge := events.NewBridge(ui.FyneDispatcher, events.WithLogger(log))

	st, err := store.Open(store.Config{
		Backend:  cfg.Store.Backend,
		Path:     cfg.Store.Path,
		RedisURL: cfg.Store.RedisURL,
		RedisKey: cfg.Store.RedisKey,
	})
	if err != nil {
		log.Error("failed to open queue store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}

	engineOpts := download.EngineOptions{
		Retries:             cfg.Engine.Retries,
		FragmentRetries:     cfg.Engine.FragmentRetries,
		ConcurrentFragments: cfg.Engine.ConcurrentFragments,
		ProgressInterval:    cfg.Engine.ProgressInterval,
		HTTPChunkSize:       cfg.Engine.HTTPChunkSize,
		ExtractorArgs:       cfg.Engine.ExtractorArgs,
	}
	engine := download.NewYTDLP(engineOpts, log)
	if cfg.Engine.AutoUpdate {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Engine.UpdateTimeout)
			defer cancel()
			if _, err := engine.Update(ctx); err != nil {
				log.Warn("yt-dlp update failed", "error", err)
			}
		}()
	}
	queueOpts := []queue.Option{
		queue.WithLogger(log),
		queue.WithPollInterval(cfg.Worker.PollInterval),
		queue.WithEngineOptions(engineOpts),
	}

	var hist *history.Store
	if !cfg.History.Disabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			log.Warn("download history unavailable", "path", cfg.History.Path, "error", err)
		} else {
			queueOpts = append(queueOpts, queue.WithRecorder(hist))
		}
	}

	ctrl := queue.New(st, engine, bridge, queueOpts...)
	if err := ctrl.Hydrate(context.Background()); err != nil {
		log.Warn("starting with an empty queue", "error", err)
	}

	transcoder := transcode.NewService(transcode.Config{
		FFmpegPath:  cfg.Transcode.FFmpegPath,
		FFprobePath: cfg.Transcode.FFprobePath,
	}, bridge, log)

	deps := ui.Deps{
		Controller: ctrl,
		Events:     bridge,
		Settings:   settings,
		Playlists:  platform.NewPlaylistLister(),
		Transcoder: transcoder,
		Engine:     engine,
		Logger:     log,
	}
	if hist != nil {
		deps.History = hist
	}
	window := ui.NewQueueWindow(myWindow, deps)
	myWindow.SetContent(window.Content())

	myWindow.SetCloseIntercept(func() {
		myWindow.Hide()
		go func() {
			ctrl.Shutdown()
			for _, job := range transcoder.Active() {
				if err := transcoder.Stop(job.ID); err != nil {
					log.Debug("failed to stop transcode", "job", job.ID, "error", err)
				}
				if err := transcoder.Wait(job.ID); err != nil {
					log.Debug("transcode ended on shutdown", "job", job.ID, "error", err)
				}
			}
			fyne.Do(myApp.Quit)
		}()
	})

	if settings.GetAutoStart() {
		ctrl.Start()
	}

	myWindow.ShowAndRun()

	bridge.Close()
	if err := st.Close(); err != nil {
		log.Warn("failed to close queue store", "error", err)
	}
	if hist != nil {
		if err := hist.Close(); err != nil {
			log.Warn("failed to close history", "error", err)
		}
	}
	log.Info("stopped")
}
