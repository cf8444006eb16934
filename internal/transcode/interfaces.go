package transcode

import (
	"errors"
	"time"

	"github.com/ytget/yt-queue/internal/model"
)

// Operation is a transcoding tool
type Operation string

const (
	OpConvert Operation = "convert"
	OpTrim    Operation = "trim"
	OpMerge   Operation = "merge"
)

var (
	ErrUnknownOperation = errors.New("unknown transcode operation")
	ErrNoInput          = errors.New("no input file")
	ErrInputNotFound    = errors.New("input file does not exist")
	ErrMergeInputs      = errors.New("merge needs at least two inputs")
	ErrTrimNeedsClip    = errors.New("trim needs a time range")
	ErrJobNotFound      = errors.New("transcode job not found")
	ErrOutputBusy       = errors.New("a job is already writing this output")
	ErrOutputIsInput    = errors.New("output would overwrite an input")
)

// Job describes one ffmpeg run
type Job struct {
	ID        string
	Operation Operation
	Inputs    []string
	Output    string // derived from the first input when empty
	Format    string // target extension without dot; defaults to the input's
	Codec     string
	Clip      *model.TimeRange
	HWAccel   string
	Threads   int
	CreatedAt time.Time
}

// Transcoder runs jobs in the background
type Transcoder interface {
	Start(job Job) (Job, error)
	Stop(jobID string) error
	Wait(jobID string) error
	Active() []Job
}

// Sink receives job events
type Sink interface {
	Publish(event model.Event)
}
