// Package watcher feeds new evidence files from an intake directory
// into the ingest service as they arrive.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
	"github.com/custodia-labs/casetrail-cli/internal/logger"
)

// defaultSettle is how long a file must stay quiet after its last write
// before it is ingested. Copies into the intake directory arrive as a
// burst of write events.
const defaultSettle = 200 * time.Millisecond

// Event reports one intake file the watcher handed to the ingest service.
type Event struct {
	Path   string
	Result *driving.IngestResult
	Err    error
}

// Watcher observes an intake directory and ingests files on arrival.
type Watcher struct {
	dir    string
	ingest driving.IngestService
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer

	// ready carries settled paths from timer callbacks to the loop
	// goroutine, which is the only sender on the events channel.
	ready chan string

	fs        *fsnotify.Watcher
	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides the quiet period before a file is ingested.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New creates a watcher over the given intake directory.
func New(dir string, ingest driving.IngestService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		ingest:  ingest,
		settle:  defaultSettle,
		pending: make(map[string]*time.Timer),
		ready:   make(chan string, 64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts observing the intake directory. Events are delivered on
// the returned channel until the context is cancelled or Close is
// called, after which the channel is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", w.dir)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fs.Add(w.dir); err != nil {
		fs.Close() //nolint:errcheck
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.fs = fs

	events := make(chan Event)
	go w.loop(ctx, events)

	return events, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.fs != nil {
			err = w.fs.Close()
		}
	})
	return err
}

func (w *Watcher) loop(ctx context.Context, events chan<- Event) {
	defer close(events)
	defer w.Close() //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.ready:
			result, err := w.ingest.ProcessFile(ctx, path, domain.DocTypeUnknown)
			select {
			case events <- Event{Path: path, Result: result, Err: err}:
			case <-ctx.Done():
				return
			}
		case fsEvent, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleFsEvent(fsEvent)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// handleFsEvent schedules ingestion of created or written files once
// they settle. Directories, hidden files and removals are ignored.
func (w *Watcher) handleFsEvent(fsEvent fsnotify.Event) {
	if !fsEvent.Has(fsnotify.Create) && !fsEvent.Has(fsnotify.Write) {
		return
	}

	name := filepath.Base(fsEvent.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	info, err := os.Stat(fsEvent.Name)
	if err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Repeated writes to the same file reset its settle timer.
	if timer, ok := w.pending[fsEvent.Name]; ok {
		timer.Reset(w.settle)
		return
	}

	path := fsEvent.Name
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		default:
			logger.Warn("watcher: intake backlog full, dropping %s", path)
		}
	})
}
