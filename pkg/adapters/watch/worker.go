// Package watch reloads a document when its backing file changes on disk.
// It runs as a lifecycle worker so hosts can supervise it alongside their
// other background components.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 50 * time.Millisecond

// Reloader is the consumer side of a file change, typically the viewer
// holding the document.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Worker watches one file and calls the reloader after each change burst
// settles.
type Worker struct {
	*worker.BaseWorker
	path      string
	reloader  Reloader
	logger    *slog.Logger
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorker creates a worker watching path on behalf of reloader.
func NewWorker(path string, reloader Reloader, opts ...Option) *Worker {
	w := &Worker{
		BaseWorker: worker.NewBaseWorker("document-watcher"),
		path:       filepath.Clean(path),
		reloader:   reloader,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory, not the file: atomic saves replace the inode
	// and a file-level watch would go stale after the first save.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(debounceDelay)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *Worker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *Worker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", panicErr)
			}
		}
	}()
	defer w.watcher.Close()

	err = w.eventLoop(ctx)
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *Worker) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("document changed on disk", "path", event.Name, "op", event.Op)
			w.debouncer.trigger(func() { w.reload(ctx) })

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

// relevant filters directory traffic down to mutations of the watched file.
func (w *Worker) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Worker) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.reloader.Reload(ctx); err != nil {
		w.logger.Error("document reload failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("document reloaded", "path", w.path)
}
