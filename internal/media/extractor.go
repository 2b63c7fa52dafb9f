package media

import (
	"context"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/pkg/executor"
)

// Extractor normalizes a media file to a mono 16kHz PCM waveform,
// the input format the transcription engine expects.
type Extractor interface {
	Extract(ctx context.Context, inputPath, outputPath string) error
}

type implExtractor struct {
	binary   string
	executor executor.Executor
	logger   logger.Logger
}

// New creates an Extractor invoking the given ffmpeg binary. An empty
// binary falls back to "ffmpeg" on PATH.
func New(binary string, exec executor.Executor, log logger.Logger) Extractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &implExtractor{binary: binary, executor: exec, logger: log}
}

// Extract runs the transcode process with video disabled, signed
// 16-bit little-endian PCM, one channel, 16000 Hz. Idempotent: the
// same input and output pair produces the same waveform, overwriting
// any previous run.
func (e *implExtractor) Extract(ctx context.Context, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return domain.NewTaskError(domain.KindFileNotFound, fmt.Sprintf("File not found: %s", inputPath))
	}

	e.logger.Info(ctx, "Extracting audio: %s -> %s", inputPath, outputPath)

	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		outputPath,
	}

	if _, err := e.executor.Execute(ctx, e.binary, args...); err != nil {
		return domain.NewTaskError(domain.KindProcess, fmt.Sprintf("FFmpeg Error: %v", err))
	}

	e.logger.Info(ctx, "Audio extracted successfully: %s", outputPath)
	return nil
}
