// Package inbox watches a folder for new receipt photos and hands each one to
// a handler once it has stopped changing.
package inbox

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/filex"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before it is handled.
const DefaultSettle = 300 * time.Millisecond

type Handler func(ctx context.Context, path string) error

type Watcher struct {
	dir     string
	handle  Handler
	logger  logging.Logger
	settle  time.Duration
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	seen    map[string]struct{}
	wg      sync.WaitGroup
}

type Option func(*Watcher)

func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// New creates the inbox directory if needed and starts watching it.
// Events are only processed once Run is called.
func New(dir string, handle Handler, logger logging.Logger, opts ...Option) (*Watcher, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(abs); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	w := &Watcher{
		dir:     abs,
		handle:  handle,
		logger:  logger.With("component", "inbox", "dir", abs),
		settle:  DefaultSettle,
		watcher: fw,
		pending: make(map[string]*time.Timer),
		seen:    make(map[string]struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

func (w *Watcher) Dir() string { return w.dir }

// Run processes events until ctx is done, then waits for running handlers.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.touch(ctx, ev.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "watcher error", "error", err)
		}
	}
}

func (w *Watcher) touch(ctx context.Context, path string) {
	if !filex.IsImage(path) {
		return
	}
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, done := w.seen[path]; done {
		return
	}
	if t, ok := w.pending[path]; ok {
		// a timer that already fired is about to mark the path seen
		if t.Stop() {
			t.Reset(w.settle)
		}
		return
	}

	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.fire(ctx, path)
	})
}

func (w *Watcher) fire(ctx context.Context, path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.seen[path] = struct{}{}
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	w.logger.Info(ctx, "new receipt", "file", filepath.Base(path))
	if err := w.handle(ctx, path); err != nil {
		w.logger.Error(ctx, "receipt import failed", "file", filepath.Base(path), "error", err)
	}
}

func (w *Watcher) stop() {
	_ = w.watcher.Close()

	w.mu.Lock()
	for p, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, p)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
