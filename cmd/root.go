package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/media-digest/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "media-digest",
	Short: "Batch media downloading and transcript digestion",
	Long: `media-digest fetches media from URLs in bulk and optionally runs each
file through an analysis pipeline:

  - Resolve and download media (yt-dlp with direct HTTP fallback)
  - Extract a mono 16kHz waveform
  - Transcribe with whisper.cpp
  - Refine and summarize the transcript with a language model

Example:
  media-digest serve
  media-digest fetch https://example.com/talk
  media-digest analyze https://example.com/talk --output ./digests`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		// Credentials may live in a .env next to the binary; absence is
		// not an error.
		godotenv.Load()
	})
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
}

// loadConfig reads and validates the configuration for commands that
// need it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgFile, err)
	}
	return cfg, nil
}
