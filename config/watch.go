package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollInterval is the fallback cadence when fsnotify is unavailable.
const pollInterval = time.Second

// Watch loads the config file and re-loads it whenever it changes,
// delivering validated snapshots on the returned channel. The initial
// snapshot is delivered immediately; a reload that fails to parse or
// validate is logged and skipped, keeping the last good config in
// effect. The channel is closed when the context is cancelled.
// Uses fsnotify for efficient file watching with polling fallback.
func Watch(ctx context.Context, path string) (<-chan *Config, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, err
	}

	ch := make(chan *Config, 1)
	ch <- initial

	go func() {
		defer close(ch)

		// Try fsnotify first
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			watchPolling(ctx, path, ch)
			return
		}
		defer watcher.Close()

		// Watch the directory (more reliable than watching the file directly)
		dir := filepath.Dir(path)
		if err := watcher.Add(dir); err != nil {
			watchPolling(ctx, path, ch)
			return
		}

		watchEvents(ctx, path, ch, watcher)
	}()

	return ch, nil
}

// watchEvents reloads on write events for the watched file.
func watchEvents(ctx context.Context, path string, ch chan<- *Config, watcher *fsnotify.Watcher) {
	baseName := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reload(path, ch)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Usually recoverable; keep watching.
			slog.Debug("config watcher error", "path", path, "error", err)
		}
	}
}

// watchPolling reloads on modification-time changes when fsnotify is
// unavailable.
func watchPolling(ctx context.Context, path string, ch chan<- *Config) {
	var lastMod time.Time
	if info, err := os.Stat(path); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().Equal(lastMod) {
				continue
			}
			lastMod = info.ModTime()
			reload(path, ch)
		}
	}
}

// reload delivers a fresh config, dropping it if the receiver has not
// drained the previous one yet.
func reload(path string, ch chan<- *Config) {
	cfg, err := Load(path)
	if err != nil {
		slog.Warn("config reload failed, keeping previous config",
			"path", path, "error", err)
		return
	}
	select {
	case ch <- cfg:
	default:
	}
}
