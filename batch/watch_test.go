package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerCoalesces(t *testing.T) {
	var mu sync.Mutex
	fired := map[string]int{}
	d := newDebouncer(30*time.Millisecond, func(key string) {
		mu.Lock()
		fired[key]++
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		d.trigger("a")
		time.Sleep(5 * time.Millisecond)
	}
	d.trigger("b")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired["a"] == 1 && fired["b"] == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, d.pendingCount())
}

func TestDebouncerStop(t *testing.T) {
	fired := make(chan string, 1)
	d := newDebouncer(20*time.Millisecond, func(key string) { fired <- key })
	d.trigger("a")
	d.stop()
	d.trigger("b")

	select {
	case key := <-fired:
		t.Fatalf("unexpected fire for %s", key)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestNewWatcherRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := NewWatcher(path, nil, 0)
	assert.Error(t, err)
}

func TestWatcherReportsSettledFiles(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root, And(SkipHidden(), MustGlob("*.png")), 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan Entry, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(e Entry) { seen <- e })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.png"), []byte("png"), 0o644))

	select {
	case e := <-seen:
		assert.Equal(t, "a.png", e.Rel)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for a.png")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
