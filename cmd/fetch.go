package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/internal/pipeline"
)

var fetchListFile string

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Download a batch of media URLs",
	Long: `Downloads every URL found in the arguments (or in the file given with
--file) with bounded concurrency, then prints each task's outcome.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchListFile, "file", "f", "", "file with one URL per line")
	rootCmd.AddCommand(fetchCmd)
}

// gatherInput joins CLI arguments and an optional list file into one
// text blob for URL extraction.
func gatherInput(args []string, listFile string) (string, error) {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, args...)
	if listFile != "" {
		data, err := os.ReadFile(listFile)
		if err != nil {
			return "", fmt.Errorf("read URL list: %w", err)
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, "\n"), nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level)

	if err := ensureDirectories(cfg); err != nil {
		return err
	}

	input, err := gatherInput(args, fetchListFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := buildOrchestrator(ctx, cfg, log)
	if _, err := orch.SubmitDownloadBatch(input); err != nil {
		return err
	}

	tasks := awaitTasks(ctx, orch.DownloadTasks, orch)
	return reportOutcomes(tasks)
}

// awaitTasks polls until every task is terminal, forwarding a signal
// into a cooperative stop.
func awaitTasks(ctx context.Context, snapshots func() []domain.TaskProgress, orch *pipeline.Orchestrator) []domain.TaskProgress {
	for {
		select {
		case <-ctx.Done():
			orch.Stop()
		case <-time.After(300 * time.Millisecond):
		}

		tasks := snapshots()
		done := true
		for _, task := range tasks {
			if !task.Status.Terminal() {
				done = false
				break
			}
		}
		if done {
			return tasks
		}
	}
}

// reportOutcomes prints one line per task and fails when nothing
// succeeded.
func reportOutcomes(tasks []domain.TaskProgress) error {
	succeeded := 0
	for _, task := range tasks {
		switch task.Status {
		case domain.StatusCompleted:
			succeeded++
			fmt.Printf("ok   %s -> %s\n", task.URL, task.Filename)
		default:
			fmt.Printf("fail %s: %s (%s)\n", task.URL, task.Error, task.Status)
		}
	}
	if succeeded == 0 {
		return fmt.Errorf("all %d tasks failed", len(tasks))
	}
	fmt.Printf("%d/%d tasks succeeded\n", succeeded, len(tasks))
	return nil
}
