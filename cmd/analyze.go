package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/internal/report"
	"github.com/nguyentantai21042004/media-digest/internal/textutil"
)

var (
	analyzeListFile string
	analyzeOutDir   string
	analyzePrompt   string
	analyzeAPIKey   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [urls...]",
	Short: "Download, transcribe and summarize a batch of media URLs",
	Long: `Runs the full pipeline on every URL: download, audio extraction,
transcription, transcript refinement and summarization. Results are
written as .docx documents into the output directory.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeListFile, "file", "f", "", "file with one URL per line")
	analyzeCmd.Flags().StringVarP(&analyzeOutDir, "output", "o", "digests", "directory for result documents")
	analyzeCmd.Flags().StringVar(&analyzePrompt, "prompt", "", "custom summarization prompt")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "language model API key for this run")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level)

	if err := ensureDirectories(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(analyzeOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	input, err := gatherInput(args, analyzeListFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := buildOrchestrator(ctx, cfg, log)
	if _, err := orch.SubmitAnalysisBatch(input, analyzeAPIKey, analyzePrompt); err != nil {
		return err
	}

	tasks := awaitTasks(ctx, orch.AnalysisTasks, orch)

	succeeded := 0
	for _, task := range tasks {
		if task.Status != domain.StatusCompleted || task.Result == nil {
			fmt.Printf("fail %s: %s (%s)\n", task.URL, task.Error, task.Status)
			continue
		}
		succeeded++

		name := digestName(task)
		outPath := filepath.Join(analyzeOutDir, name)
		if err := report.WriteDigest(strings.TrimSuffix(name, ".docx"), task.Result, outPath); err != nil {
			log.Error(ctx, "Could not write %s: %v", outPath, err)
			continue
		}
		fmt.Printf("ok   %s -> %s\n", task.URL, outPath)
	}

	if succeeded == 0 {
		return fmt.Errorf("all %d tasks failed", len(tasks))
	}
	return nil
}

func digestName(task domain.TaskProgress) string {
	base := task.Filename
	if base == "" {
		base = task.URL
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return textutil.SanitizeFilename(base, fmt.Sprintf("task_%d", task.Index)) + ".docx"
}
