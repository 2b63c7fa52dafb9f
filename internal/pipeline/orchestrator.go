package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nguyentantai21042004/media-digest/internal/batch"
	"github.com/nguyentantai21042004/media-digest/internal/config"
	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/internal/media"
	"github.com/nguyentantai21042004/media-digest/internal/textutil"
)

// ErrNoURLs reports a submission whose text contained nothing fetchable.
var ErrNoURLs = errors.New("no valid URLs found in input")

// extractSources pulls URLs out of free-form text. When the text holds
// no URLs at all, the trimmed non-empty lines are used verbatim as
// source identifiers (local names, non-HTTP URIs), first-seen-order
// deduped like the URL path.
func extractSources(text string) []string {
	if urls := textutil.ExtractURLs(text); len(urls) > 0 {
		return urls
	}

	seen := make(map[string]bool)
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	return lines
}

// Transcriber converts a waveform file into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (domain.Transcript, error)
}

// Refiner cleans up and summarizes transcripts. Implementations apply
// their own degradation policy and never fail the pipeline.
type Refiner interface {
	Refine(ctx context.Context, text string) string
	Summarize(ctx context.Context, text, customPrompt string) string
}

// RefinerFactory builds a Refiner for one submission. apiKey, when
// non-empty, overrides the configured credential for that batch only.
type RefinerFactory func(apiKey string) (Refiner, error)

// Orchestrator drives submissions through acquisition and, for
// analysis batches, the extract/transcribe/refine/summarize stages.
// One instance serves the whole process; submissions run on background
// goroutines and are observed through task snapshots.
type Orchestrator struct {
	cfg         *config.Config
	logger      logger.Logger
	acquirer    *batch.Acquirer
	extractor   media.Extractor
	transcriber Transcriber
	newRefiner  RefinerFactory

	downloads *store
	analyses  *store

	stopped atomic.Bool
}

// NewOrchestrator wires the stage components together.
func NewOrchestrator(cfg *config.Config, acq *batch.Acquirer, ext media.Extractor, tr Transcriber, newRefiner RefinerFactory, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		logger:      log,
		acquirer:    acq,
		extractor:   ext,
		transcriber: tr,
		newRefiner:  newRefiner,
		downloads:   newStore(),
		analyses:    newStore(),
	}
}

// SubmitDownloadBatch extracts source identifiers from free-form text
// and starts a download-only batch. It returns the initial snapshots
// immediately; the batch runs in the background.
func (o *Orchestrator) SubmitDownloadBatch(text string) ([]domain.TaskProgress, error) {
	urls := extractSources(text)
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	o.resume()
	sess := newSession(o.downloads, urls, o.cfg.Paths.Batch)
	if err := os.MkdirAll(sess.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create batch directory: %w", err)
	}

	o.logger.Info(context.Background(), "Download batch %s: %d tasks", sess.ID, len(urls))
	go o.runDownloads(sess)
	return sess.snapshots(), nil
}

func (o *Orchestrator) runDownloads(sess *Session) {
	o.acquirer.AcquireAll(context.Background(), sess.SourceTasks(), sess.Dir,
		func(index, percent int) {
			sess.setPercent(index, percent)
		},
		func(index int, text string) {
			sess.applyStatusText(index, text)
		},
		func(res domain.FetchResult) {
			if res.Success() {
				sess.setPath(res.Index, res.Path)
				sess.complete(res.Index, nil)
			} else {
				sess.fail(res.Index, res.Err)
			}
		})
}

// SubmitAnalysisBatch extracts source identifiers from free-form text
// and starts a full-pipeline batch. Each task flows into the post-processing stages
// as soon as its own download finishes; a task that fails any stage
// never disturbs its siblings.
func (o *Orchestrator) SubmitAnalysisBatch(text, apiKey, customPrompt string) ([]domain.TaskProgress, error) {
	urls := extractSources(text)
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	refiner := o.buildRefiner(apiKey)

	o.resume()
	sess := newSession(o.analyses, urls, o.cfg.Paths.Analysis)
	if err := os.MkdirAll(sess.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create analysis directory: %w", err)
	}

	o.logger.Info(context.Background(), "Analysis batch %s: %d tasks", sess.ID, len(urls))
	go o.runAnalyses(sess, refiner, customPrompt)
	return sess.snapshots(), nil
}

func (o *Orchestrator) runAnalyses(sess *Session, refiner Refiner, customPrompt string) {
	ctx := context.Background()
	var stages sync.WaitGroup

	// Analysis progress is reported as stage milestones, not byte
	// counts, so the per-download percent callback stays nil.
	o.acquirer.AcquireAll(ctx, sess.SourceTasks(), sess.Dir,
		nil,
		func(index int, text string) {
			sess.applyStatusText(index, text)
		},
		func(res domain.FetchResult) {
			if !res.Success() {
				sess.fail(res.Index, res.Err)
				return
			}
			sess.setPath(res.Index, res.Path)
			sess.setPercent(res.Index, 30)
			stages.Add(1)
			go func() {
				defer stages.Done()
				o.runStages(ctx, sess, res, refiner, customPrompt)
			}()
		})

	stages.Wait()
}

// SubmitLocalFile runs the post-download stages on a file already on
// disk, synchronously, and returns the terminal snapshot. This is the
// entry point for watched-directory ingestion.
func (o *Orchestrator) SubmitLocalFile(ctx context.Context, path string) (domain.TaskProgress, error) {
	if _, err := os.Stat(path); err != nil {
		return domain.TaskProgress{}, domain.NewTaskError(domain.KindFileNotFound, fmt.Sprintf("File not found: %s", path))
	}

	refiner := o.buildRefiner("")

	sess := newSession(o.analyses, []string{path}, o.cfg.Paths.Analysis)
	sess.setPath(0, path)
	sess.setStatus(0, domain.StatusDownloaded)
	sess.setPercent(0, 30)

	o.runStages(ctx, sess, domain.FetchResult{Index: 0, Path: path}, refiner, "")
	return sess.snapshots()[0], nil
}

// runStages takes one acquired file through extraction, transcription
// and the language-model stages, updating the task as it goes.
func (o *Orchestrator) runStages(ctx context.Context, sess *Session, res domain.FetchResult, refiner Refiner, customPrompt string) {
	index := res.Index
	if o.halt(sess, index) {
		return
	}

	sess.setStatus(index, domain.StatusExtractingAudio)
	audioPath := waveformPath(res.Path)
	if err := o.extractor.Extract(ctx, res.Path, audioPath); err != nil {
		sess.fail(index, err)
		return
	}
	sess.setPercent(index, 50)

	if o.halt(sess, index) {
		return
	}

	sess.setStatus(index, domain.StatusTranscribing)
	transcript, err := o.transcriber.Transcribe(ctx, audioPath)
	// The waveform is an intermediate; drop it whether or not the
	// transcription succeeded, keeping only the source media.
	if rmErr := os.Remove(audioPath); rmErr != nil {
		o.logger.Warn(ctx, "Could not remove waveform %s: %v", audioPath, rmErr)
	}
	if err != nil {
		sess.fail(index, err)
		return
	}
	sess.setPercent(index, 70)

	refined := transcript.Text
	summary := ""
	if refiner != nil {
		if o.halt(sess, index) {
			return
		}
		sess.setStatus(index, domain.StatusRefining)
		refined = refiner.Refine(ctx, transcript.Text)

		sess.setStatus(index, domain.StatusSummarizing)
		sess.setPercent(index, 85)
		summary = refiner.Summarize(ctx, refined, customPrompt)
	}

	sess.complete(index, &domain.PipelineResult{
		Summary:        summary,
		FullTranscript: refined,
		Transcript:     timedLines(transcript.Segments),
	})
}

// halt marks the task stopped when a global stop is in effect.
func (o *Orchestrator) halt(sess *Session, index int) bool {
	if !o.stopped.Load() {
		return false
	}
	sess.fail(index, domain.NewTaskError(domain.KindStopped, "stopped"))
	return true
}

// buildRefiner constructs the language-model stage for one submission.
// A missing or broken credential degrades to a nil refiner: transcripts
// are still produced, just not refined or summarized.
func (o *Orchestrator) buildRefiner(apiKey string) Refiner {
	if o.newRefiner == nil {
		return nil
	}
	refiner, err := o.newRefiner(apiKey)
	if err != nil {
		o.logger.Warn(context.Background(), "Language model unavailable, transcripts will not be refined: %v", err)
		return nil
	}
	return refiner
}

// resume clears any previous stop so a new submission can run.
func (o *Orchestrator) resume() {
	o.stopped.Store(false)
	o.acquirer.Reset()
}

// Stop halts current batches cooperatively: in-flight downloads are
// cancelled, queued tasks and pending stages are marked Stopped, and
// tasks already past a blocking call finish their current stage first.
func (o *Orchestrator) Stop() {
	o.stopped.Store(true)
	o.acquirer.Stop()
	o.logger.Info(context.Background(), "Stop requested, halting active batches")
}

// Stopped reports whether a stop is in effect.
func (o *Orchestrator) Stopped() bool {
	return o.stopped.Load()
}

// DownloadTasks snapshots every download task submitted so far.
func (o *Orchestrator) DownloadTasks() []domain.TaskProgress {
	return o.downloads.snapshots()
}

// AnalysisTasks snapshots every analysis task submitted so far.
func (o *Orchestrator) AnalysisTasks() []domain.TaskProgress {
	return o.analyses.snapshots()
}

// DownloadTask looks up one download task by ID.
func (o *Orchestrator) DownloadTask(id string) (domain.TaskProgress, bool) {
	return o.downloads.task(id)
}

// AnalysisTask looks up one analysis task by ID.
func (o *Orchestrator) AnalysisTask(id string) (domain.TaskProgress, bool) {
	return o.analyses.task(id)
}

// DownloadFilePath returns the media file of a completed download task.
func (o *Orchestrator) DownloadFilePath(id string) (string, bool) {
	return o.downloads.path(id)
}

// AnalysisFilePath returns the source media of a completed analysis task.
func (o *Orchestrator) AnalysisFilePath(id string) (string, bool) {
	return o.analyses.path(id)
}

// CompletedFiles maps download task IDs to the files they produced,
// silently skipping IDs that are unknown or not completed.
func (o *Orchestrator) CompletedFiles(ids []string) []string {
	var paths []string
	for _, id := range ids {
		if path, ok := o.downloads.path(id); ok {
			paths = append(paths, path)
		}
	}
	return paths
}

// waveformPath names the intermediate audio file next to its source.
func waveformPath(mediaPath string) string {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	return base + "_audio.wav"
}

func timedLines(segments []domain.Segment) []domain.TimedLine {
	lines := make([]domain.TimedLine, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		lines = append(lines, domain.TimedLine{
			Timestamp: textutil.FormatTimestamp(seg.Start),
			Text:      text,
		})
	}
	return lines
}
