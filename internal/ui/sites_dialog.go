package ui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-queue/internal/download"
	"github.com/ytget/yt-queue/internal/events"
)

const noSitesFound = "No results found."

// SitesPanel searches the sites yt-dlp supports and updates yt-dlp itself.
// Engine calls run off the UI thread; results come back through dispatcher.
type SitesPanel struct {
	engine     download.Maintainer
	dispatcher events.Dispatcher

	queryEntry   *widget.Entry
	searchBtn    *widget.Button
	updateBtn    *widget.Button
	resultsLabel *widget.Label
	statusLabel  *widget.Label
}

// NewSitesPanel creates the panel
func NewSitesPanel(engine download.Maintainer, dispatcher events.Dispatcher) *SitesPanel {
	sp := &SitesPanel{engine: engine, dispatcher: dispatcher}

	sp.queryEntry = widget.NewEntry()
	sp.queryEntry.SetPlaceHolder("Site name, e.g. vimeo")
	sp.queryEntry.OnSubmitted = func(string) { sp.search() }
	sp.searchBtn = widget.NewButtonWithIcon("Search", theme.SearchIcon(), sp.search)
	sp.updateBtn = widget.NewButtonWithIcon("Update yt-dlp", theme.DownloadIcon(), sp.update)
	sp.resultsLabel = widget.NewLabel("")
	sp.resultsLabel.Wrapping = fyne.TextWrapWord
	sp.statusLabel = widget.NewLabel("")
	return sp
}

// Content returns the panel layout
func (sp *SitesPanel) Content() fyne.CanvasObject {
	top := container.NewBorder(nil, nil, nil, sp.searchBtn, sp.queryEntry)
	bottom := container.NewBorder(nil, nil, nil, sp.updateBtn, sp.statusLabel)
	return container.NewBorder(top, bottom, nil, nil, container.NewVScroll(sp.resultsLabel))
}

// Show displays the panel in a dialog over window
func (sp *SitesPanel) Show(window fyne.Window) {
	d := dialog.NewCustom("Supported sites", "Close", sp.Content(), window)
	d.Resize(fyne.NewSize(DialogWidth, DialogHeight))
	d.Show()
}

func (sp *SitesPanel) search() {
	query := sp.queryEntry.Text
	sp.searchBtn.Disable()
	sp.statusLabel.SetText("Searching...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), EngineTaskTimeout)
		defer cancel()
		sites, err := sp.engine.Sites(ctx)
		sp.dispatcher.Do(func() {
			sp.searchBtn.Enable()
			if err != nil {
				sp.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
				return
			}
			matches := download.SearchSites(sites, query)
			sp.statusLabel.SetText(fmt.Sprintf("%d of %d sites", len(matches), len(sites)))
			if len(matches) == 0 {
				sp.resultsLabel.SetText(noSitesFound)
				return
			}
			sp.resultsLabel.SetText(strings.Join(matches, "\n"))
		})
	}()
}

func (sp *SitesPanel) update() {
	sp.updateBtn.Disable()
	sp.statusLabel.SetText("Updating yt-dlp...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), EngineTaskTimeout)
		defer cancel()
		report, err := sp.engine.Update(ctx)
		sp.dispatcher.Do(func() {
			sp.updateBtn.Enable()
			if err != nil {
				sp.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
				return
			}
			if report == "" {
				report = "yt-dlp updated"
			}
			sp.statusLabel.SetText(report)
		})
	}()
}
