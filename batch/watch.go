package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/gobeaver/filescraper/logger"
)

// DefaultSettle is how long a file must stay quiet before it is handed on.
const DefaultSettle = 500 * time.Millisecond

// Watcher reports files created or modified below a root directory once
// they have stopped changing.
type Watcher struct {
	root     string
	selector Selector
	settle   time.Duration

	watcher *fsnotify.Watcher
	pending *debouncer
	ready   chan string
	done    chan struct{}
}

// NewWatcher watches root and every directory below it that selector lets
// a walk enter. settle of zero means DefaultSettle.
func NewWatcher(root string, selector Selector, settle time.Duration) (*Watcher, error) {
	if selector == nil {
		selector = All()
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "watch %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf("watch %s: not a directory", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}

	w := &Watcher{
		root:     root,
		selector: selector,
		settle:   settle,
		watcher:  fw,
		ready:    make(chan string),
		done:     make(chan struct{}),
	}
	w.pending = newDebouncer(settle, w.emit)

	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers settled files to handle until ctx is cancelled. handle is
// called from Run's goroutine, one file at a time.
func (w *Watcher) Run(ctx context.Context, handle func(Entry)) error {
	log := logger.ComponentLogger("watch")
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watch error", logger.FieldError, err)

		case path := <-w.ready:
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			e := entryOf(w.root, path, info)
			if !w.selector.Match(&e) {
				continue
			}
			log.Debugw("file settled", logger.FieldFile, path)
			handle(e)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				logger.ComponentLogger("watch").Warnw("cannot watch directory",
					logger.FieldFile, event.Name, logger.FieldError, err)
			}
		}
		return
	}
	w.pending.trigger(event.Name)
}

// addTree watches dir and the directories below it. Files already present
// in a newly created directory are queued too, since their events may have
// been missed.
func (w *Watcher) addTree(dir string) error {
	if dir != w.root {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		e := entryOf(w.root, dir, info)
		if !w.selector.TraverseDescendants(&e) {
			return nil
		}
	}
	if err := w.watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read directory %s", dir)
	}
	for _, de := range entries {
		path := filepath.Join(dir, de.Name())
		switch {
		case de.IsDir():
			if err := w.addTree(path); err != nil {
				return err
			}
		case dir != w.root && de.Type().IsRegular():
			w.pending.trigger(path)
		}
	}
	return nil
}

func (w *Watcher) emit(path string) {
	select {
	case w.ready <- path:
	case <-w.done:
	}
}

func (w *Watcher) close() {
	close(w.done)
	w.pending.stop()
	w.watcher.Close()
}

// debouncer calls fire for a key once no trigger for it has arrived within
// delay.
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	fire   func(key string)
	closed bool
}

func newDebouncer(delay time.Duration, fire func(key string)) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

func (d *debouncer) trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		closed := d.closed
		d.mu.Unlock()
		if !closed {
			d.fire(key)
		}
	})
}

func (d *debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
