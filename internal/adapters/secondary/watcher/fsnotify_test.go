package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// waitForEvent drains the stream until an event for path arrives.
func waitForEvent(t *testing.T, events <-chan entities.ChangeEvent, path string) entities.ChangeEvent {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				t.Fatalf("event stream closed while waiting for %s", path)
			}
			if event.Path == path {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for an event on %s", path)
		}
	}
}

func startWatcher(t *testing.T, root string) (*FsnotifyWatcher, <-chan entities.ChangeEvent) {
	t.Helper()
	w := NewFsnotifyWatcher()
	events, err := w.Watch(context.Background(), root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w, events
}

func TestWatchEmitsCreateAndWrite(t *testing.T) {
	root := t.TempDir()
	_, events := startWatcher(t, root)

	path := filepath.Join(root, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("# one"), 0600))

	event := waitForEvent(t, events, path)
	assert.Equal(t, entities.Created, event.Type)

	require.NoError(t, os.WriteFile(path, []byte("# two"), 0600))

	event = waitForEvent(t, events, path)
	assert.Equal(t, entities.Modified, event.Type)
}

func TestWatchEmitsRemove(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	_, events := startWatcher(t, root)
	require.NoError(t, os.Remove(path))

	event := waitForEvent(t, events, path)
	assert.Equal(t, entities.Removed, event.Type)
}

func TestWatchCoversExistingSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(sub, 0750))

	_, events := startWatcher(t, root)

	path := filepath.Join(sub, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	event := waitForEvent(t, events, path)
	assert.Equal(t, entities.Created, event.Type)
}

func TestWatchExtendsToNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	_, events := startWatcher(t, root)

	sub := filepath.Join(root, "new")
	require.NoError(t, os.Mkdir(sub, 0750))
	// Give the watcher a moment to pick the directory up.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "inside.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	event := waitForEvent(t, events, path)
	assert.Equal(t, entities.Created, event.Type)
}

func TestWatchMissingRoot(t *testing.T) {
	w := NewFsnotifyWatcher()

	_, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "nope"))

	var watchErr *entities.WatchError
	require.ErrorAs(t, err, &watchErr)
	assert.Contains(t, watchErr.Dir, "nope")
}

func TestWatchRejectsSecondStart(t *testing.T) {
	root := t.TempDir()
	w, _ := startWatcher(t, root)

	_, err := w.Watch(context.Background(), root)
	assert.Error(t, err)
}

func TestStopClosesStream(t *testing.T) {
	root := t.TempDir()
	w, events := startWatcher(t, root)

	require.NoError(t, w.Stop())

	select {
	case _, ok := <-events:
		assert.False(t, ok, "stream should be closed after Stop")
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after Stop")
	}

	// Stop is idempotent.
	require.NoError(t, w.Stop())
}

func TestConcurrentStops(t *testing.T) {
	root := t.TempDir()
	w, _ := startWatcher(t, root)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Stop())
		}()
	}
	wg.Wait()
}

func TestContextCancelClosesStream(t *testing.T) {
	root := t.TempDir()
	w := NewFsnotifyWatcher()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := w.Watch(ctx, root)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after context cancellation")
	}
}
