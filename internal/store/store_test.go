package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ytget/yt-queue/internal/model"
)

func newTestTask(url string) model.Task {
	return model.NewTask(url, model.MediaMP4, "720", "/tmp/downloads", model.AdvancedOptions{})
}

func getTestRedisURL() string {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	return url
}

// openers returns a fresh store of every backend rooted in dir. The reopen
// func simulates a process restart by opening the same location again.
func openers(t *testing.T) map[string]func(dir string) Store {
	t.Helper()
	return map[string]func(dir string) Store{
		BackendFile: func(dir string) Store {
			return NewFileStore(filepath.Join(dir, "queue.json"))
		},
		BackendBolt: func(dir string) Store {
			s, err := OpenBoltStore(filepath.Join(dir, "queue.db"))
			if err != nil {
				t.Fatalf("Failed to open bolt store: %v", err)
			}
			return s
		},
	}
}

func TestStores_LoadMissing(t *testing.T) {
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t.TempDir())
			defer s.Close()

			tasks, err := s.Load(context.Background())
			if err != nil {
				t.Fatalf("Expected no error for missing store, got %v", err)
			}
			if len(tasks) != 0 {
				t.Errorf("Expected empty queue, got %d tasks", len(tasks))
			}
		})
	}
}

func TestStores_CrashConsistency(t *testing.T) {
	ctx := context.Background()
	a := newTestTask("https://example.com/a")
	b := newTestTask("https://example.com/b")

	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			s := open(dir)
			if err := s.Save(ctx, nil, []model.Task{a}); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if err := s.Save(ctx, nil, []model.Task{a, b}); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			// bolt holds a file lock, release it like a dying process would
			s.Close()

			reopened := open(dir)
			defer reopened.Close()

			tasks, err := reopened.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(tasks) != 2 {
				t.Fatalf("Expected 2 tasks, got %d", len(tasks))
			}
			if tasks[0].ID != a.ID || tasks[1].ID != b.ID {
				t.Errorf("Expected order [%s %s], got [%s %s]", a.ID, b.ID, tasks[0].ID, tasks[1].ID)
			}
			if tasks[0].URL != a.URL || tasks[0].Quality != "720" {
				t.Errorf("Task fields not preserved: %+v", tasks[0])
			}
		})
	}
}

func TestStores_CurrentComesFirst(t *testing.T) {
	ctx := context.Background()
	current := newTestTask("https://example.com/current")
	pending := []model.Task{newTestTask("https://example.com/1"), newTestTask("https://example.com/2")}

	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t.TempDir())
			defer s.Close()

			if err := s.Save(ctx, &current, pending); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			tasks, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			want := []string{current.ID, pending[0].ID, pending[1].ID}
			if len(tasks) != len(want) {
				t.Fatalf("Expected %d tasks, got %d", len(want), len(tasks))
			}
			for i, id := range want {
				if tasks[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, tasks[i].ID)
				}
			}
		})
	}
}

func TestStores_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t.TempDir())
			defer s.Close()

			tasks := []model.Task{newTestTask("https://a"), newTestTask("https://b"), newTestTask("https://c")}
			if err := s.Save(ctx, nil, tasks); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if err := s.Save(ctx, nil, nil); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			loaded, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(loaded) != 0 {
				t.Errorf("Expected empty queue after clear, got %d", len(loaded))
			}
		})
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	if err := os.WriteFile(path, []byte(`{"version":1,"tasks":[{"id":`), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	_, err := NewFileStore(path).Load(context.Background())
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt, got %v", err)
	}
}

func TestFileStore_UnknownAndMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	doc := `{"version":1,"future":true,"tasks":[{"id":"task-legacy","url":"https://a","media_type":"mp3","destination":"/tmp","color":"red"}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tasks, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.ID != "task-legacy" || task.MediaType != model.MediaMP3 {
		t.Errorf("Unexpected task: %+v", task)
	}
	if task.Quality != model.QualityBest {
		t.Errorf("Expected default quality, got %q", task.Quality)
	}
	if task.Options.AudioQuality != model.DefaultAudioQuality {
		t.Errorf("Expected default audio quality, got %q", task.Options.AudioQuality)
	}
	if task.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be defaulted")
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "nested", "queue.json"))
	for i := 0; i < 3; i++ {
		if err := s.Save(context.Background(), nil, []model.Task{newTestTask("https://a")}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "queue.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only queue.json, got %v", names)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Config{Path: filepath.Join(dir, "q.json")})
	if err != nil {
		t.Fatalf("Open default failed: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Expected *FileStore by default, got %T", s)
	}

	s, err = Open(Config{Backend: "BOLT", Path: filepath.Join(dir, "q.db")})
	if err != nil {
		t.Fatalf("Open bolt failed: %v", err)
	}
	if _, ok := s.(*BoltStore); !ok {
		t.Errorf("Expected *BoltStore, got %T", s)
	}
	s.Close()

	if _, err := Open(Config{Backend: "etcd"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s, err := OpenRedisStore(getTestRedisURL(), "ytqueue:test:"+model.GenerateID(""))
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	defer s.client.Del(ctx, s.key)

	current := newTestTask("https://example.com/current")
	pending := []model.Task{newTestTask("https://example.com/next")}
	if err := s.Save(ctx, &current, pending); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	tasks, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != current.ID || tasks[1].ID != pending[0].ID {
		t.Errorf("Unexpected tasks: %+v", tasks)
	}

	if err := s.Save(ctx, nil, nil); err != nil {
		t.Fatalf("Save empty failed: %v", err)
	}
	tasks, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected empty queue, got %d", len(tasks))
	}
}
