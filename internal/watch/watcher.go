// Package watch reports changes to a set of files, debounced, so the CLI
// can reload a manifest while it is being edited.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long changes settle before the callback runs
const DefaultDelay = 100 * time.Millisecond

// Watcher monitors files and triggers a callback when they change
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	files     map[string]bool
	logger    *zap.Logger
	delay     time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// Option configures a Watcher
type Option func(*Watcher)

// WithLogger sets the logger for watch events
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDelay sets the debounce delay
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// New creates a watcher for files. onChange receives the changed paths,
// sorted, once changes have settled.
func New(files []string, onChange func([]string), opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		files:    make(map[string]bool, len(files)),
		logger:   zap.NewNop(),
		delay:    DefaultDelay,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
	}
	w.debouncer = NewDebouncer(w.delay, onChange)
	return w, nil
}

// Start watches the directories holding the files. Directories are watched
// rather than files so that editors replacing a file are still seen.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	w.wg.Add(1)
	go w.watch()
	return nil
}

// Run starts the watcher and stops it when ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	select {
	case <-w.stopChan:
		return nil
	default:
		close(w.stopChan)
	}

	w.wg.Wait()
	w.debouncer.Stop()
	return w.watcher.Close()
}

func (w *Watcher) watch() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			w.logger.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			w.debouncer.Add(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-w.stopChan:
			return
		}
	}
}

// Debouncer collects paths and hands them to a callback once no new path
// has arrived for its duration.
type Debouncer struct {
	duration time.Duration
	callback func([]string)
	timer    *time.Timer
	pending  map[string]struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewDebouncer creates a debouncer
func NewDebouncer(duration time.Duration, callback func([]string)) *Debouncer {
	return &Debouncer{
		duration: duration,
		callback: callback,
		pending:  make(map[string]struct{}),
	}
}

// Add records a path and restarts the delay
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	sort.Strings(paths)
	if d.callback != nil {
		d.callback(paths)
	}
}

// Stop drops pending paths and ignores later ones
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = make(map[string]struct{})
}
