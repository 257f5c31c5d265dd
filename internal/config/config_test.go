package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shortforge/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PEXELS_API_KEY", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "shortforge", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "shortforge", "output") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.API.Bind != "127.0.0.1:7490" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if !cfg.Workflow.ReconcilePending {
		t.Fatal("expected reconcile_pending enabled by default")
	}
	if cfg.Clip.MinDuration != 15 || cfg.Clip.MaxDuration != 60 || cfg.Clip.MaxClips != 3 || !cfg.Clip.BurnCaptions {
		t.Fatalf("unexpected clip defaults: %+v", cfg.Clip)
	}
	if cfg.Generate.Voice != "en-US-ChristopherNeural" || cfg.Generate.MaxFootage != 5 {
		t.Fatalf("unexpected generate defaults: %+v", cfg.Generate)
	}
	if cfg.Download.Attempts != 3 || cfg.Download.MinWaitSeconds != 4 || cfg.Download.MaxWaitSeconds != 10 {
		t.Fatalf("unexpected download defaults: %+v", cfg.Download)
	}
	if cfg.Stock.APIKey != "" {
		t.Fatalf("expected empty stock key, got %q", cfg.Stock.APIKey)
	}
	if got := cfg.DatabasePath(); got != filepath.Join(tempHome, ".local", "share", "shortforge", "jobs.db") {
		t.Fatalf("unexpected database path: %q", got)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.OutputDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "shortforge.toml")

	type payload struct {
		Clip struct {
			MinDuration float64 `toml:"min_duration"`
			MaxDuration float64 `toml:"max_duration"`
			MaxClips    int     `toml:"max_clips"`
		} `toml:"clip"`
		Stock struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"stock"`
	}
	custom := payload{}
	custom.Clip.MinDuration = 10
	custom.Clip.MaxDuration = 30
	custom.Clip.MaxClips = 2
	custom.Stock.APIKey = "file-pexels"
	custom.Stock.BaseURL = "https://example.com/pexels/"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Clip.MinDuration != 10 || cfg.Clip.MaxDuration != 30 || cfg.Clip.MaxClips != 2 {
		t.Fatalf("unexpected clip settings: %+v", cfg.Clip)
	}
	if cfg.Stock.APIKey != "file-pexels" {
		t.Fatalf("expected stock key from file, got %q", cfg.Stock.APIKey)
	}
	if cfg.Stock.BaseURL != "https://example.com/pexels" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Stock.BaseURL)
	}
	if cfg.Generate.MaxFootage != config.Default().Generate.MaxFootage {
		t.Fatalf("expected default max footage, got %d", cfg.Generate.MaxFootage)
	}
}

func TestEnvFallbacksFillMissingSecrets(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PEXELS_API_KEY", "env-pexels")
	t.Setenv("OPENROUTER_API_KEY", "env-llm")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "env-hub")
	t.Setenv("HF_TOKEN", "env-hf")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Stock.APIKey != "env-pexels" {
		t.Fatalf("expected pexels key from env, got %q", cfg.Stock.APIKey)
	}
	if cfg.LLM.APIKey != "env-llm" {
		t.Fatalf("expected llm key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.WhisperX.HFToken != "env-hub" {
		t.Fatalf("expected HUGGING_FACE_HUB_TOKEN to take precedence, got %q", cfg.WhisperX.HFToken)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	envPath := filepath.Join(tempDir, "secrets.env")
	if err := os.WriteFile(envPath, []byte("SHORTFORGE_TEST_PEXELS=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("SHORTFORGE_TEST_PEXELS") })

	configPath := filepath.Join(tempDir, "shortforge.toml")
	body := "[paths]\nenv_file = \"" + envPath + "\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(configPath); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := os.Getenv("SHORTFORGE_TEST_PEXELS"); got != "from-dotenv" {
		t.Fatalf("expected env file to populate environment, got %q", got)
	}
}

func TestValidateRejectsBadClipBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"min too small", func(c *config.Config) { c.Clip.MinDuration = 2 }, "clip.min_duration"},
		{"max below min", func(c *config.Config) { c.Clip.MinDuration = 40; c.Clip.MaxDuration = 30 }, "clip.max_duration must be >="},
		{"too many clips", func(c *config.Config) { c.Clip.MaxClips = 11 }, "clip.max_clips"},
		{"odd width", func(c *config.Config) { c.Generate.Width = 1081 }, "must be even"},
		{"bad orientation", func(c *config.Config) { c.Stock.Orientation = "diagonal" }, "stock.orientation"},
		{"waits inverted", func(c *config.Config) { c.Download.MinWaitSeconds = 20 }, "download.max_wait_seconds"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Clip.MaxClips != 3 {
		t.Fatalf("unexpected sample clip count: %d", cfg.Clip.MaxClips)
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/clips")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "clips") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
