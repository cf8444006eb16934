package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/dustin/go-humanize"

	"github.com/ytget/yt-queue/internal/history"
)

// newHistoryList renders finished downloads newest first; tapping a
// succeeded entry reveals its file.
func newHistoryList(entries []history.Entry, reveal func(path string)) fyne.CanvasObject {
	if len(entries) == 0 {
		return widget.NewLabel("No downloads yet")
	}
	list := widget.NewList(
		func() int { return len(entries) },
		func() fyne.CanvasObject {
			title := widget.NewLabel("")
			title.Truncation = fyne.TextTruncateEllipsis
			return container.NewBorder(nil, nil, nil, widget.NewLabel(""), title)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			e := entries[id]
			row := obj.(*fyne.Container)
			title := row.Objects[0].(*widget.Label)
			when := row.Objects[1].(*widget.Label)
			title.SetText(historyTitle(e))
			if e.Succeeded() {
				title.Importance = widget.MediumImportance
			} else {
				title.Importance = widget.DangerImportance
			}
			title.Refresh()
			when.SetText(humanize.Time(e.FinishedAt))
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		if e := entries[id]; e.Succeeded() && e.OutputPath != "" {
			reveal(e.OutputPath)
		}
		list.UnselectAll()
	}
	return list
}

func historyTitle(e history.Entry) string {
	if !e.Succeeded() {
		return StatusFailed + MiddleDotSeparator + e.URL + MiddleDotSeparator + e.Error
	}
	if e.OutputPath != "" {
		return e.OutputPath
	}
	return e.URL
}
