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

	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

// stableChecks is how many consecutive size samples must match before
// a new file is considered fully written.
const (
	stableChecks   = 3
	stableInterval = 300 * time.Millisecond
)

type implWatcher struct {
	watchDir  string
	handler   Handler
	logger    logger.Logger
	watcher   *fsnotify.Watcher
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// Start monitors the watch directory and runs the handler on every new
// media file. It returns when ctx is cancelled, after in-flight
// handlers finish.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching %s for new media (max concurrent: %d)", w.watchDir, cap(w.semaphore))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isMediaFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-media file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New media detected: %s", event.Name)
			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()
					w.process(ctx, path)
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) process(ctx context.Context, path string) {
	if !w.waitStable(ctx, path) {
		return
	}
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error(ctx, "Failed to process %s: %v", path, err)
	}
}

// waitStable blocks until the file size stops changing, so half-copied
// files never enter the pipeline. Returns false if the file vanished or
// the context was cancelled.
func (w *implWatcher) waitStable(ctx context.Context, path string) bool {
	var lastSize int64 = -1
	matches := 0

	for matches < stableChecks {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(stableInterval):
		}

		info, err := os.Stat(path)
		if err != nil {
			w.logger.Debug(ctx, "File disappeared before processing: %s", path)
			return false
		}
		if info.Size() == lastSize {
			matches++
		} else {
			matches = 0
			lastSize = info.Size()
		}
	}
	return true
}

// isMediaFile accepts the container and audio formats the pipeline can
// decode. Waveform intermediates are excluded so the pipeline's own
// output never re-triggers a watch event.
func isMediaFile(path string) bool {
	if strings.HasSuffix(path, "_audio.wav") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv", ".mp3", ".m4a", ".wav", ".flac", ".ogg":
		return true
	}
	return false
}
