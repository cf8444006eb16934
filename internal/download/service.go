package download

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-queue/internal/model"
)

// YTDLP runs requests through the yt-dlp binary
type YTDLP struct {
	opts   EngineOptions
	logger *slog.Logger

	listSites  func(ctx context.Context) (string, error)
	selfUpdate func(ctx context.Context) (string, error)

	sitesMu sync.Mutex
	sites   []string
}

// NewYTDLP creates the yt-dlp engine adapter
func NewYTDLP(opts EngineOptions, logger *slog.Logger) *YTDLP {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YTDLP{
		opts:       opts,
		logger:     logger.With("component", "ytdlp"),
		listSites:  listExtractors,
		selfUpdate: updateYTDLP,
	}
}

// Options returns the engine settings used for BuildRequest
func (y *YTDLP) Options() EngineOptions {
	return y.opts
}

// Download runs a single request to completion
func (y *YTDLP) Download(ctx context.Context, req Request, onProgress func(model.Progress), onLog func(string)) (Result, error) {
	dl := y.command(req)

	var lastFile string
	dl.ProgressFunc(y.opts.ProgressInterval, func(update ytdlp.ProgressUpdate) {
		progress, ok := progressFromUpdate(update)
		if !ok {
			return
		}
		if progress.Filename != "" {
			lastFile = progress.Filename
		}
		if onProgress != nil {
			onProgress(progress)
		}
	})

	y.logger.Debug("starting download", "task", req.TaskID, "url", req.URL, "format", req.Format)

	result, err := dl.Run(ctx, req.URL)
	if result != nil && onLog != nil {
		relayLines(result.Stderr, onLog)
	}
	if err != nil {
		return Result{}, fmt.Errorf("yt-dlp failed for %s: %w", req.URL, err)
	}

	out := Result{OutputPath: lastFile}
	if info, err := result.GetExtractedInfo(); err == nil && len(info) > 0 {
		// Get the first downloaded file
		if info[0].Filename != nil {
			out.OutputPath = *info[0].Filename
		}
	}
	return out, nil
}

func (y *YTDLP) command(req Request) *ytdlp.Command {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Output(req.Output).
		Format(req.Format)

	if req.ExtractAudio {
		dl = dl.ExtractAudio().AudioFormat(req.AudioFormat)
		if req.AudioQuality != "" {
			dl = dl.AudioQuality(req.AudioQuality)
		}
	}
	if req.RecodeVideo != "" {
		dl = dl.RecodeVideo(req.RecodeVideo)
	}
	for _, arg := range req.PostProcessorArgs {
		dl = dl.PostProcessorArgs(arg)
	}

	if req.Playlist {
		dl = dl.YesPlaylist()
	} else {
		dl = dl.NoPlaylist()
	}

	if req.WriteSubs {
		dl = dl.WriteSubs().SubLangs(req.SubLangs).SubFormat(req.SubFormat)
	}
	if req.WriteThumbnail {
		dl = dl.WriteThumbnail()
	}
	if req.WriteInfoJSON {
		dl = dl.WriteInfoJSON()
	}
	if req.WriteDescription {
		dl = dl.WriteDescription()
	}
	if req.WriteAutoSubs {
		dl = dl.WriteAutoSubs()
	}

	if req.Proxy != "" {
		dl = dl.Proxy(req.Proxy)
	}
	if req.Cookies != "" {
		dl = dl.Cookies(req.Cookies)
	}

	if req.Retries > 0 {
		dl = dl.Retries(strconv.Itoa(req.Retries))
	}
	if req.FragmentRetries > 0 {
		dl = dl.FragmentRetries(strconv.Itoa(req.FragmentRetries))
	}
	if req.ConcurrentFragments > 0 {
		dl = dl.ConcurrentFragments(req.ConcurrentFragments)
	}
	if req.HTTPChunkSize != "" {
		dl = dl.HTTPChunkSize(req.HTTPChunkSize)
	}
	if req.ExtractorArgs != "" {
		dl = dl.ExtractorArgs(req.ExtractorArgs)
	}

	if req.Sections != "" {
		dl = dl.DownloadSections(req.Sections)
		if req.ForceKeyframesAtCuts {
			dl = dl.ForceKeyframesAtCuts()
		}
	}

	return dl
}

// progressFromUpdate converts a yt-dlp update. Updates for phases the queue
// does not report (post-processing) are dropped.
func progressFromUpdate(update ytdlp.ProgressUpdate) (model.Progress, bool) {
	progress := model.Progress{
		Downloaded: int64(update.DownloadedBytes),
		Total:      int64(update.TotalBytes),
	}
	if update.Info != nil && update.Info.Filename != nil {
		progress.Filename = *update.Info.Filename
	}

	switch update.Status {
	case ytdlp.ProgressStatusStarting, ytdlp.ProgressStatusDownloading:
		progress.Status = model.ProgressDownloading
	case ytdlp.ProgressStatusFinished:
		progress.Status = model.ProgressFinished
	case ytdlp.ProgressStatusError:
		progress.Status = model.ProgressError
	default:
		return model.Progress{}, false
	}
	return progress, true
}

func relayLines(output string, onLog func(string)) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			onLog(line)
		}
	}
}
