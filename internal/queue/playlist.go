package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/ytget/yt-queue/internal/model"
)

// ErrEmptyPlaylist is returned when a playlist has no entries
var ErrEmptyPlaylist = errors.New("playlist has no entries")

// PlaylistLister resolves a playlist URL into its entries
type PlaylistLister interface {
	ListPlaylist(ctx context.Context, url string) ([]model.PlaylistEntry, error)
}

// ExpandPlaylist turns a playlist task into one single-item task per entry.
// Every other option, the codec and the thread hint are inherited.
func ExpandPlaylist(ctx context.Context, lister PlaylistLister, task model.Task) ([]model.Task, error) {
	entries, err := lister.ListPlaylist(ctx, task.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist %s: %w", task.URL, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPlaylist, task.URL)
	}

	opts := task.Options
	opts.Playlist = false

	tasks := make([]model.Task, 0, len(entries))
	for _, entry := range entries {
		if entry.URL == "" {
			continue
		}
		item := model.NewTask(entry.URL, task.MediaType, task.Quality, task.Destination, opts).
			WithCodec(task.Codec).
			WithThreads(task.Threads)
		tasks = append(tasks, item)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPlaylist, task.URL)
	}
	return tasks, nil
}
