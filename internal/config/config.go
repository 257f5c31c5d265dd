package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	EnvFile   string `toml:"env_file"`
}

// API contains the daemon HTTP listener settings.
type API struct {
	Bind string `toml:"bind"`
	// Token, when set, is required as a Bearer token on every API request.
	Token string `toml:"token"`
}

// Workflow contains scheduler behaviour.
type Workflow struct {
	// ReconcilePending re-enqueues pending jobs on startup and fails jobs
	// that were interrupted mid-run.
	ReconcilePending bool `toml:"reconcile_pending"`
}

// Clip holds the defaults applied to clip jobs submitted without options.
type Clip struct {
	MinDuration  float64 `toml:"min_duration"`
	MaxDuration  float64 `toml:"max_duration"`
	MaxClips     int     `toml:"max_clips"`
	BurnCaptions bool    `toml:"burn_captions"`
	WordsPerCue  int     `toml:"words_per_cue"`
}

// Generate holds settings for topic-driven video generation.
type Generate struct {
	Voice          string  `toml:"voice"`
	MaxFootage     int     `toml:"max_footage"`
	SegmentSeconds float64 `toml:"segment_seconds"`
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	FPS            int     `toml:"fps"`
}

// Download configures the yt-dlp downloader.
type Download struct {
	Binary         string `toml:"binary"`
	Format         string `toml:"format"`
	Attempts       int    `toml:"attempts"`
	MinWaitSeconds int    `toml:"min_wait_seconds"`
	MaxWaitSeconds int    `toml:"max_wait_seconds"`
}

// WhisperX configures transcription.
type WhisperX struct {
	Model       string `toml:"model"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
	Language    string `toml:"language"`
}

// Face configures the external face detector used for adaptive framing.
// An empty command disables detection and every frame falls back to center.
type Face struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// LLM contains connection settings for script generation.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Stock configures the Pexels stock footage search.
type Stock struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	PerPage        int    `toml:"per_page"`
	Orientation    string `toml:"orientation"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS configures the edge-tts speech synthesizer.
type TTS struct {
	Binary string `toml:"binary"`
}

// Encoding configures ffmpeg rendering.
type Encoding struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Preset        string `toml:"preset"`
	CRF           int    `toml:"crf"`
	AudioBitrate  string `toml:"audio_bitrate"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	JobCompleted   bool   `toml:"job_completed"`
	JobFailed      bool   `toml:"job_failed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for shortforge.
//
// Configuration sections by subsystem:
//   - Paths: working, output, data and log directories
//   - API: daemon HTTP listener
//   - Workflow: scheduler startup behaviour
//   - Clip / Generate: pipeline defaults
//   - Download, WhisperX, Face, LLM, Stock, TTS, Encoding: external tools and services
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	API           API           `toml:"api"`
	Workflow      Workflow      `toml:"workflow"`
	Clip          Clip          `toml:"clip"`
	Generate      Generate      `toml:"generate"`
	Download      Download      `toml:"download"`
	WhisperX      WhisperX      `toml:"whisperx"`
	Face          Face          `toml:"face"`
	LLM           LLM           `toml:"llm"`
	Stock         Stock         `toml:"stock"`
	TTS           TTS           `toml:"tts"`
	Encoding      Encoding      `toml:"encoding"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Secrets from the configured .env file are
// loaded into the environment before env fallbacks are applied; variables
// already set in the environment win.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFile(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shortforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the job database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "jobs.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
