package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/yt-queue/internal/events"
)

type fakeMaintainer struct {
	sites     []string
	sitesErr  error
	report    string
	updateErr error
}

func (m fakeMaintainer) Sites(ctx context.Context) ([]string, error) {
	return m.sites, m.sitesErr
}

func (m fakeMaintainer) Update(ctx context.Context) (string, error) {
	return m.report, m.updateErr
}

func newTestSitesPanel(t *testing.T, engine fakeMaintainer) (*SitesPanel, func(t *testing.T)) {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)

	posted := make(chan func(), 1)
	sp := NewSitesPanel(engine, events.DispatcherFunc(func(fn func()) { posted <- fn }))
	w := test.NewWindow(sp.Content())
	t.Cleanup(w.Close)

	return sp, func(t *testing.T) {
		t.Helper()
		select {
		case fn := <-posted:
			fn()
		case <-time.After(2 * time.Second):
			t.Fatal("nothing was dispatched to the UI thread")
		}
	}
}

func TestSitesPanel_Search(t *testing.T) {
	sp, runPosted := newTestSitesPanel(t, fakeMaintainer{sites: []string{"youtube", "youtube:tab", "Vimeo"}})

	tests := []struct {
		query   string
		results string
		status  string
	}{
		{"YouTube", "youtube\nyoutube:tab", "2 of 3 sites"},
		{"twitch", noSitesFound, "0 of 3 sites"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			sp.queryEntry.SetText(tt.query)
			test.Tap(sp.searchBtn)
			if !sp.searchBtn.Disabled() {
				t.Error("Search should be disabled while listing")
			}
			runPosted(t)

			if sp.resultsLabel.Text != tt.results {
				t.Errorf("results = %q, want %q", sp.resultsLabel.Text, tt.results)
			}
			if sp.statusLabel.Text != tt.status {
				t.Errorf("status = %q, want %q", sp.statusLabel.Text, tt.status)
			}
			if sp.searchBtn.Disabled() {
				t.Error("Search should be enabled again")
			}
		})
	}
}

func TestSitesPanel_SearchError(t *testing.T) {
	sp, runPosted := newTestSitesPanel(t, fakeMaintainer{sitesErr: errors.New("yt-dlp not found")})

	test.Tap(sp.searchBtn)
	runPosted(t)

	if sp.statusLabel.Text != "Error: yt-dlp not found" {
		t.Errorf("status = %q", sp.statusLabel.Text)
	}
}

func TestSitesPanel_Update(t *testing.T) {
	tests := []struct {
		name   string
		engine fakeMaintainer
		want   string
	}{
		{"report", fakeMaintainer{report: "Updated yt-dlp to stable@2025.06.30"}, "Updated yt-dlp to stable@2025.06.30"},
		{"silent", fakeMaintainer{}, "yt-dlp updated"},
		{"failure", fakeMaintainer{updateErr: errors.New("permission denied")}, "Error: permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, runPosted := newTestSitesPanel(t, tt.engine)

			test.Tap(sp.updateBtn)
			runPosted(t)

			if sp.statusLabel.Text != tt.want {
				t.Errorf("status = %q, want %q", sp.statusLabel.Text, tt.want)
			}
			if sp.updateBtn.Disabled() {
				t.Error("Update should be enabled again")
			}
		})
	}
}
