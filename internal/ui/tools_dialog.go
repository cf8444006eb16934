package ui

import (
	"errors"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-queue/internal/model"
	"github.com/ytget/yt-queue/internal/transcode"
)

var errNoInputs = errors.New("add at least one input file, one per line")

// ToolsDialog starts convert, trim and merge jobs on local files
type ToolsDialog struct {
	transcoder transcode.Transcoder
	window     fyne.Window
	onStarted  func(job transcode.Job)
	dialog     *dialog.ConfirmDialog

	operationSelect *widget.Select
	inputsEntry     *widget.Entry
	formatEntry     *widget.Entry
	codecEntry      *widget.Entry
	startEntry      *widget.Entry
	endEntry        *widget.Entry
}

// NewToolsDialog creates the transcoding dialog
func NewToolsDialog(transcoder transcode.Transcoder, window fyne.Window, onStarted func(job transcode.Job)) *ToolsDialog {
	td := &ToolsDialog{transcoder: transcoder, window: window, onStarted: onStarted}

	td.operationSelect = widget.NewSelect([]string{
		string(transcode.OpConvert), string(transcode.OpTrim), string(transcode.OpMerge),
	}, nil)
	td.operationSelect.SetSelected(string(transcode.OpConvert))
	td.inputsEntry = widget.NewMultiLineEntry()
	td.inputsEntry.SetPlaceHolder("/path/to/input.mp4")
	td.formatEntry = widget.NewEntry()
	td.formatEntry.SetPlaceHolder("mp3, mkv, ... (empty keeps the input's)")
	td.codecEntry = widget.NewEntry()
	td.codecEntry.SetPlaceHolder("optional, e.g. libx264")
	td.startEntry = widget.NewEntry()
	td.startEntry.SetPlaceHolder("HH:MM:SS")
	td.endEntry = widget.NewEntry()
	td.endEntry.SetPlaceHolder("HH:MM:SS")

	form := widget.NewForm(
		widget.NewFormItem("Operation", td.operationSelect),
		widget.NewFormItem("Inputs", td.inputsEntry),
		widget.NewFormItem("Format", td.formatEntry),
		widget.NewFormItem("Codec", td.codecEntry),
		widget.NewFormItem("From", td.startEntry),
		widget.NewFormItem("To", td.endEntry),
	)
	td.dialog = dialog.NewCustomConfirm("Tools", "Run", "Cancel", form, td.onRun, window)
	td.dialog.Resize(fyne.NewSize(DialogWidth, DialogHeight))
	return td
}

// Show displays the dialog
func (td *ToolsDialog) Show() {
	td.dialog.Show()
}

// Job builds the job described by the form
func (td *ToolsDialog) Job() (transcode.Job, error) {
	var inputs []string
	for _, line := range strings.Split(td.inputsEntry.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			inputs = append(inputs, line)
		}
	}
	if len(inputs) == 0 {
		return transcode.Job{}, errNoInputs
	}
	clip, err := model.NewTimeRange(td.startEntry.Text, td.endEntry.Text)
	if err != nil {
		return transcode.Job{}, err
	}
	return transcode.Job{
		Operation: transcode.Operation(td.operationSelect.Selected),
		Inputs:    inputs,
		Format:    strings.TrimPrefix(strings.TrimSpace(td.formatEntry.Text), "."),
		Codec:     strings.TrimSpace(td.codecEntry.Text),
		Clip:      clip,
	}, nil
}

func (td *ToolsDialog) onRun(confirmed bool) {
	if !confirmed {
		return
	}
	job, err := td.Job()
	if err == nil {
		job, err = td.transcoder.Start(job)
	}
	if err != nil {
		dialog.ShowError(err, td.window)
		return
	}
	if td.onStarted != nil {
		td.onStarted(job)
	}
}
