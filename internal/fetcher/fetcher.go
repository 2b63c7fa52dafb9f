package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/media-digest/internal/config"
	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

// ProgressFunc receives percent updates in the 0-100 range.
type ProgressFunc func(percent int)

// StatusFunc receives short human-readable status text.
type StatusFunc func(text string)

// Fetcher resolves one source identifier into a local file. Fetch
// never returns an untyped error and never panics: every failure path
// resolves to a FetchResult carrying a domain.TaskError.
type Fetcher interface {
	Fetch(ctx context.Context, task domain.SourceTask, destDir string, onProgress ProgressFunc, onStatus StatusFunc) domain.FetchResult
}

// Options are the resolver tuning knobs. The zero value is not usable;
// fill from config via OptionsFromConfig or set fields explicitly.
type Options struct {
	SocketTimeout time.Duration
	Retries       int
	Format        string
	UserAgent     string
	Referer       string
	CookieFile    string
	Verbose       bool

	// DirectOnly bypasses the resolver entirely and streams the URL
	// over plain HTTP. Used for known direct file links and in tests.
	DirectOnly bool
}

type implFetcher struct {
	opts   Options
	logger logger.Logger
}

// OptionsFromConfig maps downloader settings onto resolver options and
// resolves the cookie source. A broken cookie source degrades to no
// cookies rather than failing startup.
func OptionsFromConfig(cfg config.DownloaderConfig, log logger.Logger) Options {
	opts := Options{
		SocketTimeout: time.Duration(cfg.SocketTimeoutSec) * time.Second,
		Retries:       cfg.Retries,
		Format:        cfg.Format,
		UserAgent:     cfg.UserAgent,
		Referer:       cfg.Referer,
		Verbose:       cfg.Verbose,
	}

	cookieFile, err := ResolveCookieFile(cfg.CookieFile, cfg.CookieEnv)
	if err != nil {
		log.Warn(context.Background(), "Cookie source unavailable, continuing without cookies: %v", err)
	} else {
		opts.CookieFile = cookieFile
	}
	return opts
}

// New creates a Fetcher with the given tuning knobs.
func New(opts Options, log logger.Logger) Fetcher {
	if opts.SocketTimeout == 0 {
		opts.SocketTimeout = 30 * time.Second
	}
	if opts.Retries == 0 {
		opts.Retries = 10
	}
	return &implFetcher{opts: opts, logger: log}
}

// Fetch tries the resolver for every identifier first: direct-link
// heuristics are unreliable across arbitrary inputs, while the
// resolver handles hosting pages, redirects and headers uniformly.
// Plain HTTP streaming remains as fallback for URLs the resolver
// cannot handle at all.
func (f *implFetcher) Fetch(ctx context.Context, task domain.SourceTask, destDir string, onProgress ProgressFunc, onStatus StatusFunc) domain.FetchResult {
	if onProgress == nil {
		onProgress = func(int) {}
	}
	if onStatus == nil {
		onStatus = func(string) {}
	}

	if err := ctx.Err(); err != nil {
		onStatus("Stopped")
		return domain.FetchResult{Index: task.Index, Err: domain.NewTaskError(domain.KindStopped, "stopped before start")}
	}

	// Each fetch writes into its own subdirectory so locating the
	// produced artifact is unambiguous even with concurrent siblings.
	taskDir := filepath.Join(destDir, fmt.Sprintf("task_%d", task.Index))
	if err := os.MkdirAll(taskDir, 0755); err != nil {
		res := domain.FetchResult{Index: task.Index, Err: domain.NewTaskError(domain.KindGeneric, fmt.Sprintf("create task dir: %v", err))}
		onStatus("Error: " + res.Err.Error())
		return res
	}

	if f.opts.DirectOnly {
		return f.fetchDirect(ctx, task, taskDir, onProgress, onStatus)
	}

	result := f.fetchWithResolver(ctx, task, taskDir, onProgress, onStatus)
	if result.Success() {
		return result
	}
	if domain.KindOf(result.Err) == domain.KindGeneric && isUnsupportedURL(result.Err) {
		f.logger.Info(ctx, "Resolver cannot handle %s, falling back to direct download", task.URL)
		return f.fetchDirect(ctx, task, taskDir, onProgress, onStatus)
	}
	return result
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
