package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-queue/internal/config"
	"github.com/ytget/yt-queue/internal/model"
)

// SettingsDialog edits the defaults applied to new tasks
type SettingsDialog struct {
	settings *config.Settings
	window   fyne.Window
	dialog   *dialog.ConfirmDialog

	downloadDirEntry  *widget.Entry
	threadsEntry      *widget.Entry
	audioQualityEntry *widget.Entry
	subtitleSelect    *widget.Select
	filenameEntry     *widget.Entry
	autoRevealCheck   *widget.Check
	autoStartCheck    *widget.Check
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings: settings,
		window:   window,
	}
	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	sd.downloadDirEntry = widget.NewEntry()
	sd.downloadDirEntry.SetPlaceHolder("Download directory path")
	sd.threadsEntry = widget.NewEntry()
	sd.threadsEntry.SetPlaceHolder("0 = engine default")
	sd.audioQualityEntry = widget.NewEntry()
	sd.audioQualityEntry.SetPlaceHolder(model.DefaultAudioQuality)
	sd.subtitleSelect = widget.NewSelect(model.SubtitleFormats(), nil)
	sd.filenameEntry = widget.NewEntry()
	sd.filenameEntry.SetPlaceHolder(model.DefaultFilenameTemplate)
	sd.autoRevealCheck = widget.NewCheck("Reveal finished downloads", nil)
	sd.autoStartCheck = widget.NewCheck("Start the queue when adding", nil)

	form := widget.NewForm(
		widget.NewFormItem("Download directory", sd.downloadDirEntry),
		widget.NewFormItem("Threads", sd.threadsEntry),
		widget.NewFormItem("Audio quality (kbps)", sd.audioQualityEntry),
		widget.NewFormItem("Subtitle format", sd.subtitleSelect),
		widget.NewFormItem("Filename template", sd.filenameEntry),
		widget.NewFormItem("", sd.autoRevealCheck),
		widget.NewFormItem("", sd.autoStartCheck),
	)

	sd.dialog = dialog.NewCustomConfirm("Settings", "Save", "Cancel", form, sd.onSave, sd.window)
	sd.dialog.Resize(fyne.NewSize(DialogWidth, DialogHeight))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.threadsEntry.SetText(strconv.Itoa(sd.settings.GetThreads()))
	sd.audioQualityEntry.SetText(sd.settings.GetAudioQuality())
	sd.subtitleSelect.SetSelected(sd.settings.GetSubtitleFormat())
	sd.filenameEntry.SetText(sd.settings.GetFilenameTemplate())
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())
	sd.autoStartCheck.SetChecked(sd.settings.GetAutoStart())
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	if dir := sd.downloadDirEntry.Text; dir != "" {
		sd.settings.SetDownloadDirectory(dir)
	}
	if threads, err := strconv.Atoi(sd.threadsEntry.Text); err == nil {
		sd.settings.SetThreads(threads)
	}
	if q := sd.audioQualityEntry.Text; q != "" {
		sd.settings.SetAudioQuality(q)
	}
	if sd.subtitleSelect.Selected != "" {
		sd.settings.SetSubtitleFormat(sd.subtitleSelect.Selected)
	}
	if sd.filenameEntry.Text != "" {
		sd.settings.SetFilenameTemplate(sd.filenameEntry.Text)
	}
	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)
	sd.settings.SetAutoStart(sd.autoStartCheck.Checked)
}
