package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shortforge/internal/media"
	"shortforge/internal/media/ffmpeg"
	"shortforge/internal/pipeline"
	"shortforge/internal/queue"
	"shortforge/internal/testsupport"
	"shortforge/internal/transcript"
	"shortforge/internal/workflow"
)

type localDownloader struct{}

func (localDownloader) Download(_ context.Context, _ string, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(destDir, "source.mp4")
	return path, os.WriteFile(path, []byte("data"), 0o644)
}

type staticProber struct{ info media.Info }

func (p staticProber) Probe(context.Context, string) (media.Info, error) { return p.info, nil }

type cannedTranscriber struct{ segments []transcript.Segment }

func (c cannedTranscriber) Transcribe(context.Context, string, transcript.Span) ([]transcript.Segment, error) {
	return c.segments, nil
}

type failingEncoder struct{ err error }

func (f failingEncoder) EncodeClip(context.Context, ffmpeg.ClipRequest) error { return f.err }

func TestManagerClipEncodeFailureFreezesProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := pipeline.NewClipHandler(pipeline.ClipDeps{
		Downloader: localDownloader{},
		Prober:     staticProber{info: media.Info{Duration: 120, Width: 1920, Height: 1080, HasVideo: true, HasAudio: true}},
		Transcriber: cannedTranscriber{segments: []transcript.Segment{
			{Start: 30, End: 33, Text: "Here is the secret!", Words: []transcript.Word{
				{Start: 30, End: 31, Text: "Here"},
				{Start: 31, End: 32, Text: "is"},
				{Start: 32, End: 33, Text: "the secret!"},
			}},
		}},
		Encoder: failingEncoder{err: errors.New("codec exploded")},
	}, pipeline.ClipSettings{WorkDir: cfg.Paths.WorkDir, OutputDir: cfg.Paths.OutputDir}, nil)
	mgr := workflow.NewManager(cfg, store, nil, handler)

	job := testsupport.NewClipJob(t, store, "https://example.com/watch?v=boom")
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()

	got := waitForStatus(t, store, job.ID, queue.StatusFailed)
	if !strings.Contains(got.Error, "codec exploded") {
		t.Fatalf("expected encode error, got %q", got.Error)
	}
	if got.Progress != 60 {
		t.Fatalf("expected progress frozen at 60, got %d", got.Progress)
	}
	if got.OutputRef != "" || got.CompletedAt != nil {
		t.Fatalf("unexpected failed job %+v", got)
	}
	entries, err := os.ReadDir(cfg.Paths.OutputDir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no outputs left, found %d", len(entries))
	}
}
