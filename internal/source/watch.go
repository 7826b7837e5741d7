package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoWatchPaths is returned when Watch is given nothing to watch.
var ErrNoWatchPaths = errors.New("watch requires at least one file")

// Watch calls fn once, then again after each burst of changes to paths,
// waiting debounce after the last event of a burst. Errors from fn are
// logged and watching continues. Watch returns when ctx is done.
func Watch(ctx context.Context, paths []string, debounce time.Duration, logger *slog.Logger, fn func(context.Context) error) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == Stdin {
			return fmt.Errorf("cannot watch stdin")
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	if len(files) == 0 {
		return ErrNoWatchPaths
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Directories rather than files, so editors that replace the file on
	// save keep being observed.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("run failed", slog.String("error", err.Error()))
		}
	}
	run()

	// timerC is nil while no rerun is pending.
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !files[name] {
				continue
			}
			logger.Debug("change detected", slog.String("file", name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
