package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/yt-queue/internal/model"
	"github.com/ytget/ytdlp/v2"
)

// DefaultParseTimeout bounds one playlist listing.
const DefaultParseTimeout = 60 * time.Second

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// YouTubeVideoURLTemplate builds the watch URL for a playlist item.
const YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"

var ErrNotPlaylist = errors.New("not a playlist URL")

type fetchFunc func(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error)

// PlaylistLister resolves playlist URLs into individual video entries.
type PlaylistLister struct {
	timeout time.Duration
	fetch   fetchFunc
}

// NewPlaylistLister returns a lister backed by the ytdlp library.
func NewPlaylistLister() *PlaylistLister {
	return &PlaylistLister{
		timeout: DefaultParseTimeout,
		fetch:   fetchYTDLP,
	}
}

// SetTimeout sets the timeout for listing operations
func (p *PlaylistLister) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}

// ListPlaylist returns the entries of the playlist at url in playlist order.
func (p *PlaylistLister) ListPlaylist(ctx context.Context, url string) ([]model.PlaylistEntry, error) {
	playlistID := ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotPlaylist, url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	entries, err := p.fetch(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}
	return entries, nil
}

func fetchYTDLP(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		entries = append(entries, model.PlaylistEntry{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	return entries, nil
}

// IsPlaylistURL reports whether url carries a playlist id.
func IsPlaylistURL(url string) bool {
	return ExtractPlaylistID(url) != ""
}

// ExtractPlaylistID extracts the playlist ID from various URL formats
func ExtractPlaylistID(url string) string {
	_, rest, found := strings.Cut(url, PlaylistParam)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(rest, ParamSeparator)
	return id
}
