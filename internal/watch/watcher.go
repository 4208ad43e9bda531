// Package watch lints files on disk as they change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"textchecker/internal/app"
	"textchecker/internal/debounce"
	"textchecker/internal/logging"
)

// Event is a published lint of one file.
type Event struct {
	Path   string
	Result app.Result
}

// Handler receives events. Events for one file arrive in order; events for
// different files may arrive concurrently.
type Handler func(Event)

// Watcher keeps one debounced session per watched file.
type Watcher struct {
	watcher *fsnotify.Watcher
	checker *app.Checker
	quiet   time.Duration
	handler Handler
	logger  *slog.Logger
	opts    []debounce.Option

	mu       sync.Mutex
	sessions map[string]*app.Session
}

// New creates a watcher. Nothing is watched until Add.
func New(checker *app.Checker, quiet time.Duration, handler Handler, logger *slog.Logger, opts ...debounce.Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		checker:  checker,
		quiet:    quiet,
		handler:  handler,
		logger:   logging.Component(logger, "watch"),
		opts:     opts,
		sessions: make(map[string]*app.Session),
	}, nil
}

// Add starts watching a file. Its directory is watched so that editors that
// save by renaming a temporary file are still seen.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sessions[abs]; ok {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.sessions[abs] = app.NewSession(w.checker, w.quiet, func(r app.Result) {
		w.handler(Event{Path: abs, Result: r})
	}, w.opts...)
	return nil
}

// Run lints every watched file once, then re-lints files as they change
// until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	w.mu.Lock()
	for path, session := range w.sessions {
		if text, ok := w.read(path); ok {
			session.LintNow(text)
		}
	}
	w.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.mu.Lock()
	session, ok := w.sessions[filepath.Clean(event.Name)]
	w.mu.Unlock()
	if !ok {
		return
	}
	if text, ok := w.read(event.Name); ok {
		session.OnChange(text)
	}
}

func (w *Watcher) read(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("read failed", "path", path, "error", err)
		return "", false
	}
	return string(data), true
}

func (w *Watcher) close() {
	w.mu.Lock()
	sessions := w.sessions
	w.sessions = make(map[string]*app.Session)
	w.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Debug("close watcher", "error", err)
	}
}
