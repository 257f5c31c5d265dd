package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shortforge/internal/config"
	"shortforge/internal/daemon"
	"shortforge/internal/logging"
	"shortforge/internal/queue"
	"shortforge/internal/stage"
	"shortforge/internal/testsupport"
	"shortforge/internal/workflow"
)

type fakeHandler struct {
	kind queue.Kind
	fail bool
}

func (f fakeHandler) Kind() queue.Kind { return f.kind }

func (f fakeHandler) Run(ctx context.Context, job *queue.Job, rep *stage.Reporter) (stage.Outcome, error) {
	if rep.Status() != queue.StatusProcessing {
		if err := rep.Advance(ctx, queue.StatusProcessing, 50); err != nil {
			return stage.Outcome{}, err
		}
	}
	if f.fail {
		return stage.Outcome{}, fmt.Errorf("render failed")
	}
	score := 64.0
	return stage.Outcome{OutputRef: "/out/" + job.ID + ".mp4", Score: &score}, nil
}

func (f fakeHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(string(f.kind))
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	apiAddr    string
}

// newCLIEnv writes a config file for a temp tree. With a daemon, the API is
// served in-process by fake pipeline handlers.
func newCLIEnv(t *testing.T, withDaemon bool) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	home := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	for _, key := range []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY", "PEXELS_API_KEY", "SHORTFORGE_API_TOKEN"} {
		t.Setenv(key, "")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	configPath := filepath.Join(testsupport.BaseDir(cfg), "shortforge.toml")
	writeTestConfig(t, configPath, cfg)
	env := &cliTestEnv{cfg: cfg, configPath: configPath, apiAddr: "127.0.0.1:1"}
	if !withDaemon {
		return env
	}

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger,
		fakeHandler{kind: queue.KindClip},
		fakeHandler{kind: queue.KindGenerate, fail: true},
	)
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	env.apiAddr = d.APIAddress()
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nwork_dir = %q\noutput_dir = %q\ndata_dir = %q\nlog_dir = %q\nenv_file = \"\"\n\n[api]\nbind = %q\n",
		cfg.Paths.WorkDir, cfg.Paths.OutputDir, cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.API.Bind,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--api", e.apiAddr}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
