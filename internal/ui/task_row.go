package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-queue/internal/model"
)

// TaskRow renders one task of the queue or one transcode job
type TaskRow struct {
	widget.BaseWidget

	id         string
	status     string
	outputPath string

	titleLabel  *widget.Label
	statusLabel *widget.Label
	rateLabel   *widget.Label
	detailLabel *widget.Label
	progress    *widget.ProgressBar
	busy        *widget.ProgressBarInfinite
	revealBtn   *widget.Button

	onReveal func(path string)
}

// NewTaskRow creates a row in the queued state
func NewTaskRow(id, title string, onReveal func(path string)) *TaskRow {
	tr := &TaskRow{id: id, onReveal: onReveal}
	tr.titleLabel = widget.NewLabel(title)
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis
	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Alignment = fyne.TextAlignTrailing
	tr.rateLabel = widget.NewLabel(DashPlaceholder)
	tr.rateLabel.TextStyle = fyne.TextStyle{Monospace: true}
	tr.detailLabel = widget.NewLabel("")
	tr.detailLabel.Truncation = fyne.TextTruncateEllipsis
	tr.progress = widget.NewProgressBar()
	tr.progress.Max = 100
	tr.busy = widget.NewProgressBarInfinite()
	tr.busy.Hide()
	tr.revealBtn = widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		if tr.onReveal != nil && tr.outputPath != "" {
			tr.onReveal(tr.outputPath)
		}
	})
	tr.revealBtn.Disable()

	tr.ExtendBaseWidget(tr)
	tr.setStatus(StatusQueued)
	return tr
}

// CreateRenderer implements fyne.Widget
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	status := container.NewGridWrap(fyne.NewSize(StatusLabelWidth, tr.statusLabel.MinSize().Height), tr.statusLabel)
	rate := container.NewGridWrap(fyne.NewSize(RateLabelWidth, tr.rateLabel.MinSize().Height), tr.rateLabel)
	header := container.NewBorder(nil, nil, nil, container.NewHBox(rate, status, tr.revealBtn), tr.titleLabel)
	bar := container.NewStack(tr.progress, tr.busy)
	return widget.NewSimpleRenderer(container.NewVBox(header, bar, tr.detailLabel))
}

// ID returns the task or job id the row tracks
func (tr *TaskRow) ID() string {
	return tr.id
}

// Status returns the row status text
func (tr *TaskRow) Status() string {
	return tr.status
}

// IsFinished reports whether the row reached a terminal status
func (tr *TaskRow) IsFinished() bool {
	return tr.status == StatusDone || tr.status == StatusFailed
}

// SetTitle replaces the row title
func (tr *TaskRow) SetTitle(title string) {
	if title != "" {
		tr.titleLabel.SetText(title)
	}
}

// Apply updates the row from an event addressed to its id
func (tr *TaskRow) Apply(event model.Event) {
	switch event.Kind {
	case model.EventTaskStarted:
		tr.SetTitle(event.Message)
		tr.setStatus(StatusDownloading)
		tr.setPercent(0)
	case model.EventProgress:
		tr.setStatus(StatusDownloading)
		tr.setPercent(event.Percent)
		tr.rateLabel.SetText(rateText(event))
	case model.EventTranscodeProgress:
		tr.setStatus(StatusProcessing)
		tr.setPercent(event.Percent)
	case model.EventIndeterminate:
		tr.setStatus(StatusDownloading)
		tr.progress.Hide()
		tr.busy.Show()
		tr.rateLabel.SetText(rateText(event))
	case model.EventDownloadFinished:
		tr.setStatus(StatusProcessing)
		tr.setPercent(100)
		tr.outputPath = event.OutputPath
	case model.EventTaskSucceeded, model.EventTranscodeFinished:
		tr.setStatus(StatusDone)
		tr.setPercent(100)
		tr.rateLabel.SetText(DashPlaceholder)
		if event.OutputPath != "" {
			tr.outputPath = event.OutputPath
		}
		tr.detailLabel.SetText(tr.outputPath)
		if tr.outputPath != "" {
			tr.revealBtn.Enable()
		}
	case model.EventTaskFailed, model.EventTranscodeFailed:
		tr.setStatus(StatusFailed)
		tr.busy.Hide()
		tr.progress.Show()
		tr.rateLabel.SetText(DashPlaceholder)
		tr.detailLabel.SetText(event.Err)
	case model.EventLog:
		tr.detailLabel.SetText(event.Message)
	}
}

func (tr *TaskRow) setStatus(status string) {
	tr.status = status
	tr.statusLabel.SetText(status)
	switch status {
	case StatusFailed:
		tr.statusLabel.Importance = widget.DangerImportance
	case StatusDone:
		tr.statusLabel.Importance = widget.SuccessImportance
	default:
		tr.statusLabel.Importance = widget.MediumImportance
	}
	tr.statusLabel.Refresh()
}

func (tr *TaskRow) setPercent(percent int) {
	tr.busy.Hide()
	tr.progress.Show()
	tr.progress.SetValue(float64(percent))
}

func rateText(event model.Event) string {
	if event.Downloaded == 0 && event.Total == 0 && event.Rate <= 0 {
		return DashPlaceholder
	}
	size := model.FormatSize(event.Downloaded)
	if event.Total > 0 {
		size = fmt.Sprintf("%s/%s", size, model.FormatSize(event.Total))
	}
	if event.Rate <= 0 {
		return size
	}
	return size + MiddleDotSeparator + model.FormatRate(event.Rate)
}
