package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/pkg/executor"
)

// Engine is the opaque speech-to-text backend. Load pays the model
// cost once; Transcribe converts one waveform into text plus
// time-aligned segments.
type Engine interface {
	Load(ctx context.Context) error
	Transcribe(ctx context.Context, audioPath string) (domain.Transcript, error)
}

type whisperEngine struct {
	binary   string
	model    string
	language string
	threads  int
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisperEngine creates an Engine backed by the whisper.cpp CLI.
func NewWhisperEngine(binary, model, language string, threads int, exec executor.Executor, log logger.Logger) Engine {
	if language == "" {
		language = "auto"
	}
	if threads <= 0 {
		threads = 4
	}
	return &whisperEngine{
		binary:   binary,
		model:    model,
		language: language,
		threads:  threads,
		executor: exec,
		logger:   log,
	}
}

// Load verifies the model file is present. The CLI maps the model on
// every invocation, so this is the cheapest useful readiness check.
func (w *whisperEngine) Load(ctx context.Context) error {
	if _, err := os.Stat(w.model); err != nil {
		return fmt.Errorf("whisper model not found: %s", w.model)
	}
	w.logger.Info(ctx, "Whisper model ready: %s", w.model)
	return nil
}

func (w *whisperEngine) Transcribe(ctx context.Context, audioPath string) (domain.Transcript, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return domain.Transcript{}, domain.NewTaskError(domain.KindFileNotFound, fmt.Sprintf("Audio file not found: %s", audioPath))
	}

	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	args := []string{
		"-m", w.model,
		"-f", audioPath,
		"-osrt",
		"-l", w.language,
		"-t", strconv.Itoa(w.threads),
		"--output-file", outputPrefix,
	}

	if _, err := w.executor.Execute(ctx, w.binary, args...); err != nil {
		return domain.Transcript{}, domain.NewTaskError(domain.KindProcess, fmt.Sprintf("whisper transcribe: %v", err))
	}

	srtPath := outputPrefix + ".srt"
	content, err := os.ReadFile(srtPath)
	if err != nil {
		return domain.Transcript{}, domain.NewTaskError(domain.KindProcess, fmt.Sprintf("whisper produced no output: %v", err))
	}
	defer os.Remove(srtPath)

	segments := parseSRT(string(content))
	return domain.Transcript{
		Text:     joinSegments(segments),
		Segments: segments,
	}, nil
}
