package config

import (
	"fmt"
	"os"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Paths      PathsConfig      `yaml:"paths"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	LLM        LLMConfig        `yaml:"llm"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type PathsConfig struct {
	Batch    string `yaml:"batch"`
	Analysis string `yaml:"analysis"`
	Archives string `yaml:"archives"`
	Watch    string `yaml:"watch"`
}

type DownloaderConfig struct {
	MaxConcurrent    int    `yaml:"max_concurrent"`
	SocketTimeoutSec int    `yaml:"socket_timeout_sec"`
	Retries          int    `yaml:"retries"`
	Format           string `yaml:"format"`
	UserAgent        string `yaml:"user_agent"`
	Referer          string `yaml:"referer"`
	CookieFile       string `yaml:"cookie_file"`
	CookieEnv        string `yaml:"cookie_env"`
	InstallResolver  bool   `yaml:"install_resolver"`
	Verbose          bool   `yaml:"verbose"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
}

type LLMConfig struct {
	Provider string   `yaml:"provider"` // "openai" or "gemini"
	APIKey   string   `yaml:"api_key"`
	APIKeys  []string `yaml:"api_keys"`
	BaseURL  string   `yaml:"base_url"`
	Model    string   `yaml:"model"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func (c *Config) Validate() error {
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 60
	}
	if c.Paths.Batch == "" {
		c.Paths.Batch = "downloads/batch"
	}
	if c.Paths.Analysis == "" {
		c.Paths.Analysis = "downloads/analysis"
	}
	if c.Paths.Archives == "" {
		c.Paths.Archives = "downloads"
	}
	if c.Downloader.MaxConcurrent == 0 {
		c.Downloader.MaxConcurrent = 5
	}
	if c.Downloader.SocketTimeoutSec == 0 {
		c.Downloader.SocketTimeoutSec = 30
	}
	if c.Downloader.Retries == 0 {
		c.Downloader.Retries = 10
	}
	if c.Downloader.Format == "" {
		c.Downloader.Format = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	}
	if c.Downloader.CookieEnv == "" {
		c.Downloader.CookieEnv = "MEDIA_DIGEST_COOKIES"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	if c.LLM.Provider == "gemini" && len(c.LLM.APIKeys) == 0 && c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.deepseek.com"
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.Model = "gemini-2.5-flash"
		default:
			c.LLM.Model = "deepseek-chat"
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
