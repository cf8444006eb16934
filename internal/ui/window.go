package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-queue/internal/config"
	"github.com/ytget/yt-queue/internal/download"
	"github.com/ytget/yt-queue/internal/events"
	"github.com/ytget/yt-queue/internal/history"
	"github.com/ytget/yt-queue/internal/model"
	"github.com/ytget/yt-queue/internal/platform"
	"github.com/ytget/yt-queue/internal/queue"
	"github.com/ytget/yt-queue/internal/transcode"
)

// Controller is the queue surface the window drives
type Controller interface {
	Enqueue(task model.Task) error
	EnqueueAll(tasks []model.Task) error
	Start()
	Pause()
	Resume()
	Stop()
	Clear()
	Snapshot() queue.Snapshot
	Affordances() model.Affordances
}

// Subscriber delivers events on the UI thread
type Subscriber interface {
	Subscribe(handler events.Handler)
}

// HistoryLister reads finished downloads
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]history.Entry, error)
}

// Deps groups the collaborators of the queue window
type Deps struct {
	Controller Controller
	Events     Subscriber
	Settings   *config.Settings
	Playlists  queue.PlaylistLister
	Transcoder transcode.Transcoder
	Engine     download.Maintainer // optional
	History    HistoryLister       // optional
	Dispatcher events.Dispatcher
	Logger     *slog.Logger
	Reveal     func(path string) error
}

// QueueWindow is the main window content
type QueueWindow struct {
	deps   Deps
	window fyne.Window
	logger *slog.Logger

	urlEntry      *widget.Entry
	mediaSelect   *widget.Select
	qualitySelect *widget.Select
	playlistCheck *widget.Check
	subsCheck     *widget.Check
	metaCheck     *widget.Check
	clipStart     *widget.Entry
	clipEnd       *widget.Entry
	addBtn        *widget.Button

	startBtn *widget.Button
	pauseBtn *widget.Button
	stopBtn  *widget.Button
	clearBtn *widget.Button

	stateLabel  *widget.Label
	noticeLabel *widget.Label

	rowsBox *fyne.Container
	rows    map[string]*TaskRow
	order   []string
}

// NewQueueWindow builds the window content and subscribes it to events
func NewQueueWindow(window fyne.Window, deps Deps) *QueueWindow {
	if deps.Dispatcher == nil {
		deps.Dispatcher = FyneDispatcher
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Reveal == nil {
		deps.Reveal = platform.RevealFile
	}
	qw := &QueueWindow{
		deps:   deps,
		window: window,
		logger: deps.Logger.With("component", "ui"),
		rows:   make(map[string]*TaskRow),
	}
	qw.build()
	qw.syncRows(deps.Controller.Snapshot())
	qw.applyAffordances(deps.Controller.Affordances())
	deps.Events.Subscribe(qw.handle)
	return qw
}

func (qw *QueueWindow) build() {
	s := qw.deps.Settings

	qw.urlEntry = widget.NewEntry()
	qw.urlEntry.SetPlaceHolder("Video or playlist URL")
	qw.urlEntry.OnSubmitted = func(string) { qw.onAdd() }

	media := make([]string, 0, 7)
	for _, mt := range append(model.VideoTypes(), model.AudioTypes()...) {
		media = append(media, string(mt))
	}
	qw.mediaSelect = widget.NewSelect(media, func(v string) { s.SetMediaType(model.MediaType(v)) })
	qw.mediaSelect.SetSelected(string(s.GetMediaType()))

	qw.qualitySelect = widget.NewSelect([]string{model.QualityBest, "2160", "1080", "720", "480", "360", model.QualityWorst}, func(v string) { s.SetQuality(v) })
	qw.qualitySelect.SetSelected(s.GetQuality())

	qw.playlistCheck = widget.NewCheck("Playlist", nil)
	qw.subsCheck = widget.NewCheck("Subtitles", nil)
	qw.metaCheck = widget.NewCheck("Metadata", nil)
	qw.clipStart = widget.NewEntry()
	qw.clipStart.SetPlaceHolder("from HH:MM:SS")
	qw.clipEnd = widget.NewEntry()
	qw.clipEnd.SetPlaceHolder("to HH:MM:SS")

	qw.addBtn = widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), qw.onAdd)
	qw.addBtn.Importance = widget.HighImportance

	qw.startBtn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() { qw.deps.Controller.Start() })
	qw.pauseBtn = widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), func() { qw.deps.Controller.Pause() })
	qw.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), qw.onStop)
	qw.clearBtn = widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), func() { qw.deps.Controller.Clear() })

	qw.stateLabel = widget.NewLabel("")
	qw.noticeLabel = widget.NewLabel("")
	qw.noticeLabel.Importance = widget.WarningImportance
	qw.noticeLabel.Truncation = fyne.TextTruncateEllipsis

	qw.rowsBox = container.NewVBox()
}

// Content returns the root canvas object
func (qw *QueueWindow) Content() fyne.CanvasObject {
	urlRow := container.NewBorder(nil, nil, nil, container.NewHBox(qw.mediaSelect, qw.qualitySelect, qw.addBtn), qw.urlEntry)
	optionsRow := container.NewHBox(qw.playlistCheck, qw.subsCheck, qw.metaCheck, qw.clipStart, qw.clipEnd)
	toolbar := container.NewHBox(
		qw.startBtn, qw.pauseBtn, qw.stopBtn, qw.clearBtn,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Tools", theme.MediaVideoIcon(), qw.showTools),
		widget.NewButtonWithIcon("History", theme.HistoryIcon(), qw.showHistory),
		widget.NewButtonWithIcon("Sites", theme.SearchIcon(), qw.showSites),
		widget.NewButtonWithIcon("", theme.SettingsIcon(), qw.showSettings),
	)
	top := container.NewVBox(urlRow, optionsRow, toolbar, widget.NewSeparator())
	bottom := container.NewBorder(nil, nil, nil, qw.stateLabel, qw.noticeLabel)
	return container.NewBorder(top, bottom, nil, nil, container.NewVScroll(qw.rowsBox))
}

func (qw *QueueWindow) buildTask(url string) (model.Task, error) {
	opts := model.AdvancedOptions{
		Playlist:  qw.playlistCheck.Checked,
		Subtitles: qw.subsCheck.Checked,
		Metadata:  qw.metaCheck.Checked,
	}
	start, end := strings.TrimSpace(qw.clipStart.Text), strings.TrimSpace(qw.clipEnd.Text)
	clip, err := model.NewTimeRange(start, end)
	if err != nil {
		return model.Task{}, err
	}
	opts.Clip = clip
	return qw.deps.Settings.NewTaskWithOptions(url, opts), nil
}

func (qw *QueueWindow) onAdd() {
	url := strings.TrimSpace(qw.urlEntry.Text)
	if url == "" {
		return
	}
	task, err := qw.buildTask(url)
	if err != nil {
		qw.showError(err)
		return
	}

	if platform.IsPlaylistURL(url) && !task.Options.Playlist && qw.deps.Playlists != nil {
		qw.urlEntry.SetText("")
		qw.expandPlaylist(task)
		return
	}

	if err := qw.deps.Controller.Enqueue(task); err != nil {
		qw.showError(err)
		return
	}
	qw.urlEntry.SetText("")
	qw.maybeAutoStart()
}

// expandPlaylist lists entries off the UI thread and enqueues them in one step.
func (qw *QueueWindow) expandPlaylist(task model.Task) {
	qw.setNotice(fmt.Sprintf("Listing playlist %s", task.URL))
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PlaylistExpandTimeout)
		defer cancel()
		tasks, err := queue.ExpandPlaylist(ctx, qw.deps.Playlists, task)
		if err == nil {
			err = qw.deps.Controller.EnqueueAll(tasks)
		}
		qw.deps.Dispatcher.Do(func() {
			if err != nil {
				qw.logger.Warn("playlist expansion failed", "url", task.URL, "error", err)
				qw.setNotice(err.Error())
				return
			}
			qw.setNotice(fmt.Sprintf("Queued %d videos from playlist", len(tasks)))
			qw.maybeAutoStart()
		})
	}()
}

func (qw *QueueWindow) maybeAutoStart() {
	if qw.deps.Settings.GetAutoStart() {
		qw.deps.Controller.Start()
	}
}

// onStop waits for the worker off the UI thread; the resulting events
// refresh the toolbar.
func (qw *QueueWindow) onStop() {
	qw.stopBtn.Disable()
	go qw.deps.Controller.Stop()
}

func (qw *QueueWindow) handle(event model.Event) {
	switch event.Kind {
	case model.EventState:
		qw.syncRows(qw.deps.Controller.Snapshot())
		qw.applyAffordances(event.Affordances)
		qw.setState(event.State, event.Queued)
	case model.EventQueueFinished:
		qw.applyAffordances(event.Affordances)
		qw.setState(model.WorkerIdle, event.Queued)
		qw.setNotice(fmt.Sprintf("Queue finished (%s)", event.State))
	case model.EventQueueCleared:
		qw.dropQueued()
		qw.applyAffordances(event.Affordances)
	case model.EventWarning:
		qw.setNotice(event.Message)
	case model.EventTaskSucceeded:
		qw.row(event.TaskID, "").Apply(event)
		if qw.deps.Settings.GetAutoRevealOnComplete() && event.OutputPath != "" {
			qw.reveal(event.OutputPath)
		}
	default:
		if event.TaskID != "" {
			qw.row(event.TaskID, event.Message).Apply(event)
		}
	}
}

// row returns the row for id, appending one when the id is new
func (qw *QueueWindow) row(id, title string) *TaskRow {
	if r, ok := qw.rows[id]; ok {
		return r
	}
	if title == "" {
		title = id
	}
	r := NewTaskRow(id, title, qw.reveal)
	qw.rows[id] = r
	qw.order = append(qw.order, id)
	qw.rowsBox.Add(r)
	return r
}

// syncRows adds rows for tasks the window has not seen yet
func (qw *QueueWindow) syncRows(snap queue.Snapshot) {
	if snap.Current != nil {
		qw.row(snap.Current.ID, snap.Current.GetDisplayTitle())
	}
	for _, task := range snap.Pending {
		qw.row(task.ID, task.GetDisplayTitle())
	}
}

// dropQueued removes rows of tasks that were cleared before starting
func (qw *QueueWindow) dropQueued() {
	kept := qw.order[:0]
	for _, id := range qw.order {
		r := qw.rows[id]
		if r.Status() == StatusQueued {
			qw.rowsBox.Remove(r)
			delete(qw.rows, id)
			continue
		}
		kept = append(kept, id)
	}
	qw.order = kept
}

func (qw *QueueWindow) applyAffordances(a model.Affordances) {
	setEnabled(qw.startBtn, a.CanStart)
	setEnabled(qw.pauseBtn, a.CanPause)
	setEnabled(qw.stopBtn, a.CanStop)
	setEnabled(qw.clearBtn, a.CanClear)
}

func (qw *QueueWindow) setState(state model.WorkerState, queued int) {
	qw.stateLabel.SetText(fmt.Sprintf("%s%s%d queued", state, MiddleDotSeparator, queued))
}

func (qw *QueueWindow) setNotice(text string) {
	qw.noticeLabel.SetText(text)
}

func (qw *QueueWindow) reveal(path string) {
	if err := qw.deps.Reveal(path); err != nil {
		qw.logger.Warn("reveal failed", "path", path, "error", err)
		qw.setNotice(err.Error())
	}
}

func (qw *QueueWindow) showError(err error) {
	qw.setNotice(err.Error())
	if qw.window != nil {
		dialog.ShowError(err, qw.window)
	}
}

func (qw *QueueWindow) showSettings() {
	NewSettingsDialog(qw.deps.Settings, qw.window).Show()
}

func (qw *QueueWindow) showTools() {
	if qw.deps.Transcoder == nil {
		return
	}
	NewToolsDialog(qw.deps.Transcoder, qw.window, func(job transcode.Job) {
		qw.row(job.ID, fmt.Sprintf("%s %s", job.Operation, job.Output)).Apply(model.Event{Kind: model.EventTranscodeProgress, TaskID: job.ID})
	}).Show()
}

func (qw *QueueWindow) showSites() {
	if qw.deps.Engine == nil {
		return
	}
	NewSitesPanel(qw.deps.Engine, qw.deps.Dispatcher).Show(qw.window)
}

func (qw *QueueWindow) showHistory() {
	if qw.deps.History == nil {
		qw.setNotice("History is disabled")
		return
	}
	entries, err := qw.deps.History.List(context.Background(), HistoryLimit)
	if err != nil {
		qw.showError(err)
		return
	}
	d := dialog.NewCustom("History", "Close", newHistoryList(entries, qw.reveal), qw.window)
	d.Resize(fyne.NewSize(DialogWidth, DialogHeight))
	d.Show()
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}
