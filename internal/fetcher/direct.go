package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/textutil"
)

const (
	directRetries = 3
	retryBackoff  = 1 * time.Second
	chunkSize     = 8192
)

// fetchDirect streams the URL over chunked HTTP GET, writing
// incrementally to disk. Retries on any failure with a fixed backoff
// and propagates the last error on exhaustion.
func (f *implFetcher) fetchDirect(ctx context.Context, task domain.SourceTask, taskDir string, onProgress ProgressFunc, onStatus StatusFunc) domain.FetchResult {
	filename := textutil.SanitizeFilename(task.URL, fmt.Sprintf("file_%d", task.Index))
	path := filepath.Join(taskDir, filename)

	var lastErr error
	for attempt := 0; attempt < directRetries; attempt++ {
		if ctx.Err() != nil {
			onStatus("Stopped")
			return domain.FetchResult{Index: task.Index, Err: domain.NewTaskError(domain.KindStopped, "stopped")}
		}

		if attempt == 0 {
			onStatus("Downloading...")
		} else {
			onStatus(fmt.Sprintf("Retrying (%d/%d)...", attempt+1, directRetries))
		}

		err := f.streamToFile(ctx, task.URL, path, onProgress)
		if err == nil {
			onProgress(100)
			onStatus("Completed")
			return domain.FetchResult{Index: task.Index, Path: path}
		}
		if domain.KindOf(err) == domain.KindStopped {
			onStatus("Stopped")
			return domain.FetchResult{Index: task.Index, Err: err}
		}
		lastErr = err

		if attempt < directRetries-1 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				onStatus("Stopped")
				return domain.FetchResult{Index: task.Index, Err: domain.NewTaskError(domain.KindStopped, "stopped")}
			}
		}
	}

	classified := Classify(lastErr)
	f.logger.Error(ctx, "Download error for %s: %s", task.URL, classified.Message)
	onStatus("Failed: " + classified.Error())
	return domain.FetchResult{Index: task.Index, Err: classified}
}

func (f *implFetcher) streamToFile(ctx context.Context, url, path string, onProgress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.NewTaskError(domain.KindStopped, "stopped")
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewHTTPStatusError(resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	err = copyChunks(ctx, out, resp.Body, resp.ContentLength, onProgress)
	out.Close()
	if err != nil {
		// Never leave a truncated file behind: it carries a real media
		// extension and a later directory scan would mistake it for a
		// finished artifact.
		os.Remove(path)
		return err
	}
	return nil
}

func copyChunks(ctx context.Context, out *os.File, body io.Reader, total int64, onProgress ProgressFunc) error {
	var downloaded int64
	buf := make([]byte, chunkSize)

	for {
		// cooperative stop, checked before every chunk write
		select {
		case <-ctx.Done():
			return domain.NewTaskError(domain.KindStopped, "stopped")
		default:
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			downloaded += int64(n)
			if total > 0 {
				onProgress(clampPercent(int(downloaded * 100 / total)))
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return domain.NewTaskError(domain.KindStopped, "stopped")
			}
			return readErr
		}
	}
}
