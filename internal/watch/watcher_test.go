package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

func TestFlushPending(t *testing.T) {
	var mu sync.Mutex
	now := time.Now()
	pending := map[string]time.Time{
		"/avatars/old.png":   now.Add(-time.Second),
		"/avatars/fresh.png": now.Add(-10 * time.Millisecond),
	}

	ready := flushPending(&mu, pending, 500*time.Millisecond, now)

	if len(ready) != 1 || ready[0] != "/avatars/old.png" {
		t.Errorf("flushPending = %v, want only the quiet path", ready)
	}
	if _, ok := pending["/avatars/old.png"]; ok {
		t.Error("flushed path still pending")
	}
	if _, ok := pending["/avatars/fresh.png"]; !ok {
		t.Error("fresh path flushed before its debounce elapsed")
	}

	// A later flush picks up the remaining path.
	ready = flushPending(&mu, pending, 500*time.Millisecond, now.Add(time.Second))
	if len(ready) != 1 || ready[0] != "/avatars/fresh.png" {
		t.Errorf("second flushPending = %v, want the fresh path", ready)
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), 0, nil); err == nil {
		t.Error("New accepted a missing directory")
	}
}

func TestNewRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := New(file, 0, nil); err == nil {
		t.Error("New accepted a plain file")
	}
}

func TestPollingWatcherDetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatar.png")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	w := newPollingWatcher(dir, 20*time.Millisecond, hclog.NewNullLogger())
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	// Bump the modification time well past the baseline scan.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("failed to update mtime: %v", err)
	}

	select {
	case ev := <-w.Events():
		if ev.Path != path || ev.Op != OpChanged {
			t.Errorf("got event %+v, want change for %s", ev, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered for a modified file")
	}
}

func TestPollingWatcherDetectsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatar.png")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	w := newPollingWatcher(dir, 20*time.Millisecond, hclog.NewNullLogger())
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}

	select {
	case ev := <-w.Events():
		if ev.Op != OpRemoved {
			t.Errorf("got op %v, want OpRemoved", ev.Op)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered for a removed file")
	}
}

func TestPollingWatcherIgnoresNonImages(t *testing.T) {
	dir := t.TempDir()

	w := newPollingWatcher(dir, 20*time.Millisecond, hclog.NewNullLogger())
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	select {
	case ev := <-w.Events():
		t.Errorf("got event %+v for a non-image file", ev)
	case <-time.After(200 * time.Millisecond):
		// Expected: nothing delivered.
	}
}
