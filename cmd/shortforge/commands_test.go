package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shortforge/internal/api"
	"shortforge/internal/queue"
	"shortforge/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := newCLIEnv(t, false)

	out, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.DatabasePath())
	requireContains(t, out, "Transcription language: English (en)")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := env.run(t, "config", "init", "--path", target); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
}

func TestClipWaitPrintsCompletedJob(t *testing.T) {
	env := newCLIEnv(t, true)

	out, _, err := env.run(t, "clip", "https://example.com/watch?v=42", "--wait", "--max-clips", "2")
	if err != nil {
		t.Fatalf("clip: %v", err)
	}
	requireContains(t, out, "completed (100%)")
	requireContains(t, out, "/out/")
	requireContains(t, out, "max clips 2")
}

func TestGenerateWaitReportsFailure(t *testing.T) {
	env := newCLIEnv(t, true)

	out, _, err := env.run(t, "generate", "volcanoes of iceland", "--wait")
	if err == nil || !strings.Contains(err.Error(), "failed") {
		t.Fatalf("expected failed job error, got %v", err)
	}
	requireContains(t, out, "render failed")
}

func TestGenerateRejectsShortTopic(t *testing.T) {
	env := newCLIEnv(t, true)

	_, _, err := env.run(t, "generate", "ab")
	if err == nil || !strings.Contains(err.Error(), "topic must be") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitWithoutDaemon(t *testing.T) {
	env := newCLIEnv(t, false)

	_, _, err := env.run(t, "clip", "https://example.com/v")
	if err == nil || !strings.Contains(err.Error(), "shortforge daemon") {
		t.Fatalf("expected daemon hint, got %v", err)
	}
}

func TestListAndShowThroughDaemon(t *testing.T) {
	env := newCLIEnv(t, true)

	out, _, err := env.run(t, "--json", "clip", "https://example.com/one")
	if err != nil {
		t.Fatalf("clip: %v", err)
	}
	var enq api.EnqueueResponse
	if err := json.Unmarshal([]byte(out), &enq); err != nil {
		t.Fatalf("decode enqueue: %v", err)
	}

	out, stderr, err := env.run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Kind")
	requireContains(t, out, shortID(enq.ID))
	if strings.Contains(stderr, "not reachable") {
		t.Fatalf("list should use the daemon, stderr: %s", stderr)
	}

	out, _, err = env.run(t, "--json", "show", enq.ID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var resp api.JobResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode show: %v", err)
	}
	if resp.Job.ID != enq.ID || resp.Job.Input != "https://example.com/one" {
		t.Fatalf("unexpected job %+v", resp.Job)
	}

	if _, _, err := env.run(t, "show", "missing-id"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}

	out, _, err = env.run(t, "--json", "list", "--status", "failed")
	if err != nil {
		t.Fatalf("list --status: %v", err)
	}
	var page api.JobListResponse
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(page.Jobs) != 0 {
		t.Fatalf("expected no failed jobs, got %+v", page.Jobs)
	}
	if _, _, err := env.run(t, "list", "--status", "bogus"); err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestListFallsBackToLocalDatabase(t *testing.T) {
	env := newCLIEnv(t, false)
	store := testsupport.MustOpenStore(t, env.cfg)
	job := testsupport.NewClipJob(t, store, "https://example.com/offline")

	out, stderr, err := env.run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, stderr, "daemon not reachable")
	requireContains(t, out, shortID(job.ID))

	out, _, err = env.run(t, "show", job.ID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "https://example.com/offline")
	requireContains(t, out, string(queue.StatusPending))
}

func TestStatusRendersDaemon(t *testing.T) {
	env := newCLIEnv(t, true)

	out, _, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "Running (pid")
	requireContains(t, out, "Pipeline clip")
	requireContains(t, out, "yt-dlp")
}

func TestHealthLocalReportsMissingKeys(t *testing.T) {
	env := newCLIEnv(t, false)

	out, _, err := env.run(t, "health", "--local")
	if !errors.Is(err, errUnhealthy) {
		t.Fatalf("expected unhealthy error, got %v", err)
	}
	requireContains(t, out, "Health (local)")
	requireContains(t, out, "LLM API key")
	requireContains(t, out, "FFmpeg")
}

func TestHealthUsesDaemon(t *testing.T) {
	env := newCLIEnv(t, true)

	out, _, err := env.run(t, "--json", "health")
	if !errors.Is(err, errUnhealthy) {
		t.Fatalf("expected unhealthy error without keys, got %v", err)
	}
	var report api.HealthReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	found := false
	for _, check := range report.Checks {
		if check.Name == "Job database" {
			found = check.Ready
		}
	}
	if !found {
		t.Fatalf("expected passing database check, got %+v", report.Checks)
	}
}

func TestTestNotifySendsToTopic(t *testing.T) {
	env := newCLIEnv(t, false)

	out, _, err := env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")

	var gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
	}))
	defer srv.Close()
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	if _, err := f.WriteString("\n[notifications]\nntfy_topic = \"" + srv.URL + "\"\n"); err != nil {
		t.Fatalf("append config: %v", err)
	}
	f.Close()

	out, _, err = env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if gotTitle != "shortforge - Test" {
		t.Fatalf("unexpected title %q", gotTitle)
	}
}
