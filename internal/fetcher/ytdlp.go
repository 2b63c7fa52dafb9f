package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
)

// recentWindow bounds how old a scanned artifact may be before it is
// considered a stale leftover rather than this fetch's output.
const recentWindow = 10 * time.Minute

// Install downloads the yt-dlp binary if it is not already available.
// Optional bootstrap step, called once at startup.
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("install resolver: %w", err)
	}
	return nil
}

// fetchWithResolver runs the generalized extractor against the URL.
// The invocation is blocking; the acquirer runs each fetch on its own
// goroutine so siblings keep making progress.
func (f *implFetcher) fetchWithResolver(ctx context.Context, task domain.SourceTask, taskDir string, onProgress ProgressFunc, onStatus StatusFunc) domain.FetchResult {
	onStatus("Analyzing...")

	dl := ytdlp.New().
		Output(filepath.Join(taskDir, "%(title)s.%(ext)s")).
		Format(f.opts.Format).
		Retries(strconv.Itoa(f.opts.Retries)).
		FragmentRetries(strconv.Itoa(f.opts.Retries)).
		SocketTimeout(f.opts.SocketTimeout.Seconds()).
		NoCheckCertificates().
		IgnoreErrors().
		NoPlaylist().
		NoWarnings().
		Print("after_move:filepath").
		ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
			switch update.Status {
			case ytdlp.ProgressStatusDownloading:
				onStatus("Downloading...")
				onProgress(clampPercent(int(update.Percent())))
			case ytdlp.ProgressStatusFinished:
				onProgress(100)
			}
		})

	if f.opts.UserAgent != "" {
		dl = dl.UserAgent(f.opts.UserAgent)
	}
	if f.opts.Referer != "" {
		dl = dl.Referer(f.opts.Referer)
	}
	if f.opts.CookieFile != "" {
		dl = dl.Cookies(f.opts.CookieFile)
	}
	if f.opts.Verbose {
		dl = dl.Verbose()
	}

	result, err := dl.Run(ctx, task.URL)
	if err != nil {
		classified := Classify(err)
		f.logger.Error(ctx, "Download error for %s: %s", task.URL, classified.Message)
		onStatus("Error: " + classified.Error())
		return domain.FetchResult{Index: task.Index, Err: classified}
	}

	path := f.locateOutput(result, taskDir)
	if path == "" {
		err := domain.NewTaskError(domain.KindGeneric, "resolver finished but produced no file")
		onStatus("Error: " + err.Error())
		return domain.FetchResult{Index: task.Index, Err: err}
	}

	onProgress(100)
	onStatus("Completed")
	return domain.FetchResult{Index: task.Index, Path: path}
}

// locateOutput prefers the filepath the resolver printed; the
// newest-file scan of the task-private directory is the fallback when
// stdout held nothing usable.
func (f *implFetcher) locateOutput(result *ytdlp.Result, taskDir string) string {
	if result != nil {
		lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			candidate := strings.TrimSpace(lines[i])
			if candidate == "" {
				continue
			}
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return newestFile(taskDir)
}

// newestFile returns the most recently modified complete file in dir,
// skipping partial-download extensions and anything older than the
// recency window.
func newestFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var (
		best     string
		bestTime time.Time
	)
	cutoff := time.Now().Add(-recentWindow)

	for _, e := range entries {
		if e.IsDir() || isPartialFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			continue
		}
		if info.ModTime().After(bestTime) {
			bestTime = info.ModTime()
			best = filepath.Join(dir, e.Name())
		}
	}
	return best
}

func isPartialFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".part", ".ytdl", ".tmp", ".temp":
		return true
	default:
		return false
	}
}
