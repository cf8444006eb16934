package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ytget/yt-queue/internal/model"
)

// Config locates the ffmpeg binaries
type Config struct {
	FFmpegPath  string
	FFprobePath string
}

type runningJob struct {
	job    Job
	cancel context.CancelFunc
	done   chan struct{}
	err    error
	ended  bool
}

// Service runs transcode jobs, each on its own goroutine
type Service struct {
	ffmpeg  string
	ffprobe string
	sink    Sink
	logger  *slog.Logger

	jobs      map[string]*runningJob
	jobsMutex sync.RWMutex
}

// NewService creates a transcoding service
func NewService(cfg Config, sink Sink, logger *slog.Logger) *Service {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = FFmpegCommand
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = FFprobeCommand
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ffmpeg:  cfg.FFmpegPath,
		ffprobe: cfg.FFprobePath,
		sink:    sink,
		logger:  logger.With("component", "transcode"),
		jobs:    make(map[string]*runningJob),
	}
}

// Validate checks a job before it is started
func Validate(job Job) error {
	switch job.Operation {
	case OpConvert, OpTrim, OpMerge:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, job.Operation)
	}
	if len(job.Inputs) == 0 {
		return ErrNoInput
	}
	if job.Operation == OpMerge && len(job.Inputs) < 2 {
		return ErrMergeInputs
	}
	if job.Operation == OpTrim && job.Clip == nil {
		return ErrTrimNeedsClip
	}
	if job.Clip != nil {
		if err := job.Clip.Validate(); err != nil {
			return err
		}
	}
	output := cleanPath(OutputPath(job))
	for _, input := range job.Inputs {
		if _, err := os.Stat(input); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		if cleanPath(input) == output {
			return fmt.Errorf("%w: %s", ErrOutputIsInput, input)
		}
	}
	return nil
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Start validates job, fills in its ID and output and runs it in the background
func (s *Service) Start(job Job) (Job, error) {
	if err := Validate(job); err != nil {
		return Job{}, err
	}
	if job.ID == "" {
		job.ID = model.GenerateID(JobIDPrefix)
	}
	job.Output = OutputPath(job)
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	s.jobsMutex.Lock()
	for _, running := range s.jobs {
		if !running.ended && running.job.Output == job.Output {
			s.jobsMutex.Unlock()
			return Job{}, fmt.Errorf("%w: %s", ErrOutputBusy, job.Output)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	running := &runningJob{job: job, cancel: cancel, done: make(chan struct{})}
	s.jobs[job.ID] = running
	s.jobsMutex.Unlock()

	s.logger.Info("transcode started", "job", job.ID, "operation", job.Operation, "output", job.Output)
	go s.run(ctx, running)

	return job, nil
}

// Stop cancels a running job
func (s *Service) Stop(jobID string) error {
	s.jobsMutex.RLock()
	running, exists := s.jobs[jobID]
	s.jobsMutex.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	running.cancel()
	return nil
}

// Wait blocks until the job exits and returns its error
func (s *Service) Wait(jobID string) error {
	s.jobsMutex.RLock()
	running, exists := s.jobs[jobID]
	s.jobsMutex.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	<-running.done

	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()
	return running.err
}

// Active returns the jobs currently running
func (s *Service) Active() []Job {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, running := range s.jobs {
		if !running.ended {
			jobs = append(jobs, running.job)
		}
	}
	return jobs
}

func (s *Service) run(ctx context.Context, running *runningJob) {
	job := running.job
	err := s.execute(ctx, job)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("transcode stopped: %w", ctx.Err())
	}

	s.jobsMutex.Lock()
	running.err = err
	running.ended = true
	s.jobsMutex.Unlock()

	if err != nil {
		s.logger.Error("transcode failed", "job", job.ID, "error", err)
		s.publish(model.Event{Kind: model.EventTranscodeFailed, TaskID: job.ID, Err: err.Error(), Message: string(job.Operation)})
	} else {
		s.logger.Info("transcode finished", "job", job.ID, "output", job.Output)
		s.publish(model.Event{Kind: model.EventTranscodeFinished, TaskID: job.ID, Percent: 100, OutputPath: job.Output, Message: string(job.Operation)})
	}

	running.cancel()
	close(running.done)
}

func (s *Service) execute(ctx context.Context, job Job) error {
	duration, err := s.duration(ctx, job)
	if err != nil {
		return err
	}

	var listPath string
	if job.Operation == OpMerge {
		dir, err := os.MkdirTemp("", "ytq-concat-*")
		if err != nil {
			return fmt.Errorf("failed to create concat dir: %w", err)
		}
		defer os.RemoveAll(dir)

		listPath = filepath.Join(dir, "inputs.txt")
		if err := os.WriteFile(listPath, []byte(ConcatList(job.Inputs)), 0644); err != nil {
			return fmt.Errorf("failed to write concat list: %w", err)
		}
	}

	// ffmpeg writes next to the output; only a finished file replaces it
	target := job.Output
	job.Output = PartialPath(target)
	args := BuildFFmpegArgs(job, listPath)
	cmd := exec.CommandContext(ctx, s.ffmpeg, args...)

	// Setup progress monitoring
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	defer os.Remove(job.Output)

	tail := s.monitorProgress(stderr, job.ID, duration)

	if err := cmd.Wait(); err != nil {
		if tail != "" {
			return fmt.Errorf("ffmpeg failed: %w: %s", err, tail)
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if err := os.Rename(job.Output, target); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// duration returns the media length the progress is measured against
func (s *Service) duration(ctx context.Context, job Job) (float64, error) {
	if job.Clip != nil && job.Operation != OpMerge {
		return job.Clip.Duration().Seconds(), nil
	}

	var total float64
	for _, input := range job.Inputs {
		d, err := s.probeDuration(ctx, input)
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// probeDuration gets the duration of a media file using ffprobe
func (s *Service) probeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobe, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	return ParseDuration(string(output))
}

// ParseDuration parses ffprobe's csv duration output
func ParseDuration(output string) (float64, error) {
	duration, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// monitorProgress publishes progress parsed from ffmpeg's -progress output
// and returns the last non-progress line for error reporting.
func (s *Service) monitorProgress(stderr io.Reader, jobID string, totalDuration float64) string {
	var tail string
	lastPercent := -1
	ScanProgress(stderr, totalDuration, func(percent int) {
		if percent == lastPercent {
			return
		}
		lastPercent = percent
		s.publish(model.Event{Kind: model.EventTranscodeProgress, TaskID: jobID, Percent: percent})
	}, func(line string) {
		tail = line
	})
	return tail
}

// ScanProgress reads ffmpeg progress lines (out_time_us=123456) and reports
// the completion percentage for each. Other lines go to onLine.
func ScanProgress(r io.Reader, totalDuration float64, onPercent func(int), onLine func(string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ProgressTimePrefix) {
			if line != "" && !strings.Contains(line, "=") && onLine != nil {
				onLine(line)
			}
			continue
		}

		micros, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
		if err != nil || totalDuration <= 0 {
			continue
		}
		progress := float64(micros) / 1000000.0 / totalDuration
		if progress > 1.0 {
			progress = 1.0
		}
		if progress < 0 {
			progress = 0
		}
		onPercent(int(progress * 100))
	}
}

func (s *Service) publish(event model.Event) {
	if s.sink != nil {
		s.sink.Publish(event)
	}
}
