package batch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/fetcher"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

// ProgressFunc receives per-task percent updates, correlated by index.
type ProgressFunc func(index, percent int)

// StatusFunc receives per-task status text, correlated by index.
type StatusFunc func(index int, text string)

// ResultFunc receives each task's terminal outcome as it happens, so
// downstream stages can start without waiting for the whole batch.
type ResultFunc func(result domain.FetchResult)

// Acquirer fans a batch of source tasks out over a bounded number of
// concurrent fetches. One failed or stopped task never cancels its
// siblings; the batch runs until every task reaches a terminal
// outcome.
type Acquirer struct {
	fetcher       fetcher.Fetcher
	logger        logger.Logger
	maxConcurrent int

	stopped atomic.Bool

	mu      sync.Mutex
	cancels map[int]context.CancelFunc
	nextID  int
}

// New creates an Acquirer. maxConcurrent bounds in-flight fetches;
// values below one fall back to the default of 5.
func New(f fetcher.Fetcher, log logger.Logger, maxConcurrent int) *Acquirer {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Acquirer{
		fetcher:       f,
		logger:        log,
		maxConcurrent: maxConcurrent,
		cancels:       make(map[int]context.CancelFunc),
	}
}

// Stop flips the shared stop flag and cancels in-flight contexts.
// Cancellation is cooperative: fetches already inside a blocking
// resolver invocation run to their own completion or timeout.
func (a *Acquirer) Stop() {
	a.stopped.Store(true)
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, cancel := range a.cancels {
		cancel()
	}
}

// Stopped reports whether Stop has been called.
func (a *Acquirer) Stopped() bool {
	return a.stopped.Load()
}

// Reset clears the stop flag so a later batch can run.
func (a *Acquirer) Reset() {
	a.stopped.Store(false)
}

// AcquireAll fetches every task and returns the successful results.
// Order of the returned slice is completion order, not input order;
// correlation is by index. Failures and stops surface through
// onStatus and onResult, never as returned entries. onResult, when
// non-nil, fires on the fetching goroutine as each task terminates.
func (a *Acquirer) AcquireAll(ctx context.Context, tasks []domain.SourceTask, destDir string, onProgress ProgressFunc, onStatus StatusFunc, onResult ResultFunc) []domain.FetchResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Register so Stop can reach this batch, and unregister on return
	// so a long-lived process never accumulates stale cancel funcs.
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.cancels[id] = cancel
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.cancels, id)
		a.mu.Unlock()
	}()

	// All per-fetch progress flows through one channel drained by a
	// single aggregator goroutine, so no fetch goroutine ever touches
	// shared state directly.
	events := make(chan progressEvent, 64)
	var aggDone sync.WaitGroup
	aggDone.Add(1)
	go func() {
		defer aggDone.Done()
		drain(events, onProgress, onStatus)
	}()

	sem := make(chan struct{}, a.maxConcurrent)
	var (
		wg        sync.WaitGroup
		resultsMu sync.Mutex
		results   []domain.FetchResult
	)

	for _, task := range tasks {
		wg.Add(1)
		go func(task domain.SourceTask) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if a.stopped.Load() {
				events <- progressEvent{index: task.Index, status: "Stopped"}
				if onResult != nil {
					onResult(domain.FetchResult{Index: task.Index, Err: domain.NewTaskError(domain.KindStopped, "stopped")})
				}
				return
			}

			result := a.fetcher.Fetch(ctx, task, destDir,
				func(percent int) {
					events <- progressEvent{index: task.Index, percent: percent, hasPercent: true}
				},
				func(text string) {
					events <- progressEvent{index: task.Index, status: text}
				},
			)

			if result.Success() {
				resultsMu.Lock()
				results = append(results, result)
				resultsMu.Unlock()
			}
			if onResult != nil {
				onResult(result)
			}
		}(task)
	}

	wg.Wait()
	close(events)
	aggDone.Wait()

	a.logger.Info(ctx, "Batch finished: %d/%d tasks succeeded", len(results), len(tasks))
	return results
}
