package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/media-digest/internal/batch"
	"github.com/nguyentantai21042004/media-digest/internal/config"
	"github.com/nguyentantai21042004/media-digest/internal/fetcher"
	"github.com/nguyentantai21042004/media-digest/internal/llm"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/internal/media"
	"github.com/nguyentantai21042004/media-digest/internal/pipeline"
	"github.com/nguyentantai21042004/media-digest/internal/transcribe"
	"github.com/nguyentantai21042004/media-digest/pkg/executor"
)

// buildOrchestrator wires the full pipeline from configuration.
func buildOrchestrator(ctx context.Context, cfg *config.Config, log logger.Logger) *pipeline.Orchestrator {
	exec := executor.New()

	if cfg.Downloader.InstallResolver {
		if err := fetcher.Install(ctx); err != nil {
			log.Warn(ctx, "Resolver bootstrap failed, relying on system binary: %v", err)
		}
	}

	f := fetcher.New(fetcher.OptionsFromConfig(cfg.Downloader, log), log)
	acq := batch.New(f, log, cfg.Downloader.MaxConcurrent)
	ext := media.New("", exec, log)

	engine := transcribe.NewWhisperEngine(
		cfg.Whisper.BinaryPath,
		cfg.Whisper.ModelPath,
		cfg.Whisper.Language,
		cfg.Whisper.Threads,
		exec, log,
	)
	tr := transcribe.NewService(engine, log)

	refinerFactory := func(apiKey string) (pipeline.Refiner, error) {
		backend, err := llm.NewBackend(cfg.LLM, apiKey, log)
		if err != nil {
			return nil, err
		}
		return llm.NewService(backend, log), nil
	}

	return pipeline.NewOrchestrator(cfg, acq, ext, tr, refinerFactory, log)
}

// ensureDirectories creates the working directories up front so the
// first submission does not race directory creation.
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{cfg.Paths.Batch, cfg.Paths.Analysis, cfg.Paths.Archives}
	if cfg.Paths.Watch != "" {
		dirs = append(dirs, cfg.Paths.Watch)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
