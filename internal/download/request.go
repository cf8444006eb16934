package download

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ytget/yt-queue/internal/model"
)

// Format expressions
const (
	FormatBestAudio = "bestaudio"
	FormatBest      = "best"
	FormatWorst     = "worst"
)

// FormatFor returns the engine format expression for a task
func FormatFor(mediaType model.MediaType, quality string) string {
	if mediaType.IsAudio() {
		return FormatBestAudio
	}
	switch quality {
	case "", model.QualityBest:
		return FormatBest
	case model.QualityWorst:
		return FormatWorst
	default:
		return fmt.Sprintf("bestvideo[height<=%s]+bestaudio/best[height<=%s]", quality, quality)
	}
}

// BuildRequest maps a task onto an engine request
func BuildRequest(task model.Task, opts EngineOptions) Request {
	task = task.Normalize()

	req := Request{
		TaskID:              task.ID,
		URL:                 task.URL,
		Output:              filepath.Join(task.Destination, task.Options.FilenameTemplate),
		Format:              FormatFor(task.MediaType, task.Quality),
		Playlist:            task.Options.Playlist,
		Proxy:               task.Options.Proxy,
		Cookies:             task.Options.CookieFile,
		Retries:             opts.Retries,
		FragmentRetries:     opts.FragmentRetries,
		ConcurrentFragments: opts.ConcurrentFragments,
		HTTPChunkSize:       opts.HTTPChunkSize,
		ExtractorArgs:       opts.ExtractorArgs,
	}

	if task.MediaType.IsAudio() {
		req.ExtractAudio = true
		req.AudioFormat = string(task.MediaType)
		req.AudioQuality = task.Options.AudioQuality
	} else {
		req.RecodeVideo = string(task.MediaType)
	}

	if args := ffmpegArgs(task); args != "" {
		req.PostProcessorArgs = append(req.PostProcessorArgs, "ffmpeg:"+args)
	}
	if task.Options.HWAccel != "" {
		req.PostProcessorArgs = append(req.PostProcessorArgs, "ffmpeg_i:-hwaccel "+task.Options.HWAccel)
	}

	if task.Options.Subtitles {
		req.WriteSubs = true
		req.SubLangs = task.Options.SubtitleLangs
		req.SubFormat = task.Options.SubtitleFormat
	}

	if task.Options.Metadata {
		req.WriteThumbnail = true
		req.WriteInfoJSON = true
		req.WriteDescription = true
		req.WriteAutoSubs = true
	}

	if clip := task.Options.Clip; clip != nil {
		req.Sections = fmt.Sprintf("*%d-%d", clip.Start, clip.End)
		req.ForceKeyframesAtCuts = true
	}

	return req
}

func ffmpegArgs(task model.Task) string {
	var parts []string
	if task.Threads > 0 {
		parts = append(parts, fmt.Sprintf("-threads %d", task.Threads))
	}
	if task.Codec != "" {
		if task.MediaType.IsAudio() {
			parts = append(parts, "-c:a "+task.Codec)
		} else {
			parts = append(parts, "-c:v "+task.Codec)
		}
	}
	return strings.Join(parts, " ")
}
