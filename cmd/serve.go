package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/media-digest/internal/archive"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/internal/server"
	"github.com/nguyentantai21042004/media-digest/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API for batch downloads and analysis. When a watch
directory is configured, media files dropped there are fed through the
analysis pipeline automatically.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level)

	if err := ensureDirectories(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := buildOrchestrator(ctx, cfg, log)
	packager := archive.NewPackager(cfg.Paths.Archives, log)

	if cfg.Paths.Watch != "" {
		w, err := watcher.New(cfg.Paths.Watch,
			func(ctx context.Context, path string) error {
				task, err := orch.SubmitLocalFile(ctx, path)
				if err != nil {
					return err
				}
				log.Info(ctx, "Watched file %s finished with status %s", path, task.Status)
				return nil
			},
			log, cfg.Downloader.MaxConcurrent)
		if err != nil {
			return err
		}
		defer w.Stop()

		go func() {
			if err := w.Start(ctx); err != nil && err != context.Canceled {
				log.Error(ctx, "Watcher stopped: %v", err)
			}
		}()
	}

	srv := server.New(cfg, orch, packager, log)
	return srv.Run(ctx)
}
