package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"shortforge/internal/api"
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
}

func (f fakeHandler) Kind() queue.Kind { return f.kind }

func (f fakeHandler) Run(ctx context.Context, job *queue.Job, rep *stage.Reporter) (stage.Outcome, error) {
	if rep.Status() != queue.StatusProcessing {
		if err := rep.Advance(ctx, queue.StatusProcessing, 50); err != nil {
			return stage.Outcome{}, err
		}
	}
	score := 72.5
	return stage.Outcome{OutputRef: "/out/" + job.ID + ".mp4", Score: &score}, nil
}

func (f fakeHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(string(f.kind))
}

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger, fakeHandler{kind: queue.KindClip}, fakeHandler{kind: queue.KindGenerate})
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func startDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, string) {
	t.Helper()
	d := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	addr := d.APIAddress()
	if addr == "" {
		t.Fatal("expected api listener address")
	}
	return d, "http://" + addr
}

func doJSON(t *testing.T, method, url, token string, body any, dest any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func waitForJob(t *testing.T, base, id string, want string) api.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var resp api.JobResponse
		if code := doJSON(t, http.MethodGet, base+"/api/jobs/"+id, "", nil, &resp); code != http.StatusOK {
			t.Fatalf("get job: status %d", code)
		}
		if resp.Job.Status == want {
			return resp.Job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s stayed %s, want %s", id, resp.Job.Status, want)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := d.Status(ctx)
	if !status.Running || !status.Workflow.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID <= 0 || status.LockFilePath == "" || status.QueueDBPath == "" {
		t.Fatalf("unexpected status paths %+v", status)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
	if d.APIAddress() != "" {
		t.Fatal("expected api listener to be closed")
	}
}

func TestDaemonRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemon(t, cfg)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}

	second := newDaemon(t, cfg)
	err := second.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestAPISubmitsAndCompletesClipJob(t *testing.T) {
	_, base := startDaemon(t, testsupport.NewConfig(t))

	var enq api.EnqueueResponse
	code := doJSON(t, http.MethodPost, base+"/api/jobs/clip", "", api.ClipRequest{URL: "https://example.com/watch?v=1"}, &enq)
	if code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", code)
	}
	if enq.ID == "" || enq.Status != "pending" {
		t.Fatalf("unexpected enqueue response %+v", enq)
	}

	job := waitForJob(t, base, enq.ID, "completed")
	if job.Kind != "clip" || job.Progress != 100 {
		t.Fatalf("unexpected completed job %+v", job)
	}
	if job.OutputRef != "/out/"+enq.ID+".mp4" {
		t.Fatalf("unexpected output ref %q", job.OutputRef)
	}
	if job.Score == nil || *job.Score != 72.5 {
		t.Fatalf("unexpected score %v", job.Score)
	}
	if job.ClipOptions == nil || job.ClipOptions.MaxClips != queue.DefaultClipOptions().MaxClips {
		t.Fatalf("expected default clip options, got %+v", job.ClipOptions)
	}
}

func TestAPISubmitsGenerateJobWithOptions(t *testing.T) {
	_, base := startDaemon(t, testsupport.NewConfig(t))

	req := api.GenerateRequest{Topic: "  deep sea creatures  ", Options: &api.GenerateOptions{Voice: "en-GB-RyanNeural"}}
	var enq api.EnqueueResponse
	if code := doJSON(t, http.MethodPost, base+"/api/jobs/generate", "", req, &enq); code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", code)
	}
	job := waitForJob(t, base, enq.ID, "completed")
	if job.Input != "deep sea creatures" {
		t.Fatalf("expected trimmed topic, got %q", job.Input)
	}
	if job.GenerateOptions == nil || job.GenerateOptions.Voice != "en-GB-RyanNeural" {
		t.Fatalf("unexpected generate options %+v", job.GenerateOptions)
	}
}

func TestAPIValidationErrors(t *testing.T) {
	_, base := startDaemon(t, testsupport.NewConfig(t))

	cases := []struct {
		name string
		path string
		body any
	}{
		{"bad scheme", "/api/jobs/clip", api.ClipRequest{URL: "ftp://example.com/a.mp4"}},
		{"missing url", "/api/jobs/clip", api.ClipRequest{}},
		{"bad durations", "/api/jobs/clip", api.ClipRequest{URL: "https://example.com/v", Options: &api.ClipOptions{MinDuration: 50, MaxDuration: 20}}},
		{"short topic", "/api/jobs/generate", api.GenerateRequest{Topic: "ab"}},
		{"unknown field", "/api/jobs/generate", map[string]string{"subject": "space"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var resp api.ErrorResponse
			if code := doJSON(t, http.MethodPost, base+tc.path, "", tc.body, &resp); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
			if resp.Kind != "validation" || resp.Error == "" {
				t.Fatalf("unexpected error response %+v", resp)
			}
		})
	}

	var list api.JobListResponse
	doJSON(t, http.MethodGet, base+"/api/jobs", "", nil, &list)
	if len(list.Jobs) != 0 {
		t.Fatalf("rejected submissions must not persist, got %d jobs", len(list.Jobs))
	}
}

func TestAPIListAndGet(t *testing.T) {
	_, base := startDaemon(t, testsupport.NewConfig(t))

	var ids []string
	for _, url := range []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"} {
		var enq api.EnqueueResponse
		doJSON(t, http.MethodPost, base+"/api/jobs/clip", "", api.ClipRequest{URL: url}, &enq)
		ids = append(ids, enq.ID)
	}

	var page api.JobListResponse
	if code := doJSON(t, http.MethodGet, base+"/api/jobs?limit=2&offset=0", "", nil, &page); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(page.Jobs) != 2 || page.Limit != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Jobs[0].ID != ids[2] {
		t.Fatalf("expected newest job first, got %s", page.Jobs[0].ID)
	}

	var resp api.ErrorResponse
	if code := doJSON(t, http.MethodGet, base+"/api/jobs?offset=-1", "", nil, &resp); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative offset, got %d", code)
	}
	if code := doJSON(t, http.MethodGet, base+"/api/jobs?limit=abc", "", nil, &resp); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-integer limit, got %d", code)
	}
	if code := doJSON(t, http.MethodGet, base+"/api/jobs/does-not-exist", "", nil, &resp); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if resp.Kind != "not_found" {
		t.Fatalf("unexpected error kind %q", resp.Kind)
	}
}

func TestAPIStatus(t *testing.T) {
	_, base := startDaemon(t, testsupport.NewConfig(t))

	var status api.DaemonStatus
	if code := doJSON(t, http.MethodGet, base+"/api/status", "", nil, &status); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !status.Running || !status.Workflow.Running {
		t.Fatalf("expected running status, got %+v", status)
	}
	if len(status.Workflow.StageHealth) != 2 {
		t.Fatalf("expected clip and generate stage health, got %+v", status.Workflow.StageHealth)
	}
	if _, ok := status.Workflow.QueueStats["pending"]; !ok {
		t.Fatalf("expected every status in queue stats, got %+v", status.Workflow.QueueStats)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency report")
	}
}

func TestAPIHealthReportsMissingKeys(t *testing.T) {
	d, base := startDaemon(t, testsupport.NewConfig(t))

	var report api.HealthReport
	if code := doJSON(t, http.MethodGet, base+"/api/health", "", nil, &report); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if report.Healthy {
		t.Fatal("expected unhealthy report without API keys")
	}
	checks := make(map[string]api.HealthCheck)
	for _, check := range report.Checks {
		checks[check.Name] = check
	}
	if !checks["Job database"].Ready {
		t.Fatalf("expected database check to pass, got %+v", checks["Job database"])
	}
	if checks["LLM API key"].Ready {
		t.Fatal("expected missing LLM key to fail")
	}
	if !checks["Pipeline clip"].Ready || !checks["Pipeline generate"].Ready {
		t.Fatalf("expected pipeline readiness checks, got %+v", report.Checks)
	}
	if d.Health(context.Background()).Healthy != report.Healthy {
		t.Fatal("daemon health and endpoint disagree")
	}
}

func TestAPIRequiresToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.API.Token = "s3cret"
	_, base := startDaemon(t, cfg)

	var resp api.ErrorResponse
	if code := doJSON(t, http.MethodGet, base+"/api/jobs", "", nil, &resp); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code := doJSON(t, http.MethodGet, base+"/api/jobs", "wrong", nil, &resp); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", code)
	}
	var list api.JobListResponse
	if code := doJSON(t, http.MethodGet, base+"/api/jobs", "s3cret", nil, &list); code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", code)
	}
}
