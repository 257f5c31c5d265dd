package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shortforge/internal/config"
)

// ConfigOption adjusts the config NewConfig returns.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns the default config rooted in a fresh temp directory:
// work, output, data and logs live under it, no env file is read and the API
// binds an ephemeral loopback port.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.EnvFile = ""
	cfg.API.Bind = "127.0.0.1:0"
	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// WithAPIKeys sets the stock footage and LLM keys.
func WithAPIKeys(stock, llm string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Stock.APIKey, cfg.LLM.APIKey = stock, llm
	}
}

func WithReconcile(enabled bool) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Workflow.ReconcilePending = enabled
	}
}

// WithStubbedBinaries puts no-op scripts for names (every external binary
// when empty) first on PATH for the rest of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, base string, _ *config.Config) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "yt-dlp", "edge-tts", "uvx"}
		}
		binDir := filepath.Join(base, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		prev := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+prev); err != nil {
			t.Fatalf("set PATH: %v", err)
		}
		t.Cleanup(func() { os.Setenv("PATH", prev) })
	}
}

// BaseDir returns the temp directory NewConfig rooted cfg in.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
