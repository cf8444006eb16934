package transcode

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"github.com/ytget/yt-queue/internal/model"
)

// FFmpeg constants
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	JobIDPrefix         = "transcode-"

	PartialSuffix   = ".part"
	ConvertedSuffix = "-converted"
	TrimmedSuffix   = "-trimmed"
	MergedSuffix    = "merged"
)

// BuildFFmpegArgs builds the ffmpeg arguments for job. For merges
// listPath is the concat demuxer list file; it is ignored otherwise.
func BuildFFmpegArgs(job Job, listPath string) []string {
	args := []string{"-y"} // Overwrite output file
	if job.HWAccel != "" {
		args = append(args, "-hwaccel", job.HWAccel)
	}

	if job.Operation == OpMerge {
		args = append(args, "-f", "concat", "-safe", "0", "-i", listPath)
	} else {
		args = append(args, "-i", job.Inputs[0])
	}

	if job.Clip != nil && job.Operation != OpMerge {
		args = append(args,
			"-ss", fmt.Sprintf("%d", job.Clip.Start),
			"-to", fmt.Sprintf("%d", job.Clip.End),
		)
	}

	args = append(args, codecArgs(job)...)

	if job.Threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", job.Threads))
	}

	return append(args,
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats",
		job.Output,
	)
}

func codecArgs(job Job) []string {
	if job.Codec == "" {
		if job.Operation == OpConvert {
			return nil
		}
		// trims and merges keep the streams as they are
		return []string{"-c", "copy"}
	}
	if model.MediaType(outputExt(job)).IsAudio() {
		return []string{"-c:a", job.Codec}
	}
	return []string{"-c:v", job.Codec}
}

// OutputPath derives the output file for job
func OutputPath(job Job) string {
	if job.Output != "" {
		return job.Output
	}
	first := job.Inputs[0]
	dir := filepath.Dir(first)
	stem := strings.TrimSuffix(filepath.Base(first), filepath.Ext(first))
	ext := "." + outputExt(job)

	switch job.Operation {
	case OpTrim:
		return filepath.Join(dir, stem+TrimmedSuffix+ext)
	case OpMerge:
		return filepath.Join(dir, slug.Make(stem+" "+MergedSuffix)+ext)
	default:
		return filepath.Join(dir, stem+ConvertedSuffix+ext)
	}
}

// PartialPath is where ffmpeg writes before the result is renamed to output.
// The extension is kept so ffmpeg still picks the muxer from it.
func PartialPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + PartialSuffix + ext
}

func outputExt(job Job) string {
	if job.Format != "" {
		return strings.ToLower(strings.TrimPrefix(job.Format, "."))
	}
	if job.Output != "" {
		return strings.ToLower(strings.TrimPrefix(filepath.Ext(job.Output), "."))
	}
	if len(job.Inputs) > 0 {
		return strings.ToLower(strings.TrimPrefix(filepath.Ext(job.Inputs[0]), "."))
	}
	return ""
}

// ConcatList renders a concat demuxer list for inputs
func ConcatList(inputs []string) string {
	var b strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			abs = input
		}
		b.WriteString("file '" + strings.ReplaceAll(abs, "'", `'\''`) + "'\n")
	}
	return b.String()
}
