package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debouncer collapses bursts of Trigger calls into one action run after the
// calls stop for the configured duration.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	action   func()
}

// NewDebouncer returns a Debouncer that runs action d after the last Trigger.
func NewDebouncer(d time.Duration, action func()) *Debouncer {
	return &Debouncer{duration: d, action: action}
}

// Trigger (re)starts the countdown.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.action)
}

// Cancel drops a pending action.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// FileWatcher reports changes to one file. It watches the parent directory
// so editors that save by writing a new file and renaming it over the old
// one are still seen. Without fsnotify it falls back to polling.
type FileWatcher struct {
	watcher      *fsnotify.Watcher
	debouncer    *Debouncer
	path         string
	parentDir    string
	logger       *slog.Logger
	pollingMode  bool
	pollInterval time.Duration
	lastModTime  time.Time
	lastSize     int64
}

// NewFileWatcher creates a watcher for path. onChanged runs on its own
// goroutine once writes settle for debounce.
func NewFileWatcher(path string, debounce time.Duration, logger *slog.Logger, onChanged func()) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fw := &FileWatcher{
		debouncer:    NewDebouncer(debounce, onChanged),
		path:         abs,
		parentDir:    filepath.Dir(abs),
		logger:       logger,
		pollInterval: 2 * time.Second,
	}
	if stat, err := os.Stat(abs); err == nil {
		fw.lastModTime = stat.ModTime()
		fw.lastSize = stat.Size()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("fsnotify unavailable, falling back to polling", "error", err, "interval", fw.pollInterval)
		fw.pollingMode = true
		return fw, nil
	}
	if err := watcher.Add(fw.parentDir); err != nil {
		_ = watcher.Close()
		logger.Warn("failed to watch directory, falling back to polling", "dir", fw.parentDir, "error", err)
		fw.pollingMode = true
		return fw, nil
	}
	fw.watcher = watcher
	return fw, nil
}

// Run delivers events until ctx is canceled or the watcher is closed.
func (fw *FileWatcher) Run(ctx context.Context) {
	defer fw.debouncer.Cancel()
	if fw.pollingMode {
		fw.poll(ctx)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fw.logger.Debug("file change detected", "path", event.Name, "op", event.Op.String())
				fw.debouncer.Trigger()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) poll(ctx context.Context) {
	ticker := time.NewTicker(fw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stat, err := os.Stat(fw.path)
			if err != nil {
				continue
			}
			if !stat.ModTime().Equal(fw.lastModTime) || stat.Size() != fw.lastSize {
				fw.lastModTime = stat.ModTime()
				fw.lastSize = stat.Size()
				fw.debouncer.Trigger()
			}
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (fw *FileWatcher) Close() error {
	fw.debouncer.Cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}
