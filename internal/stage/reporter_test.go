package stage_test

import (
	"context"
	"errors"
	"testing"

	"shortforge/internal/queue"
	"shortforge/internal/services"
	"shortforge/internal/stage"
	"shortforge/internal/testsupport"
)

func TestReporterAdvancesClipJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewClipJob(t, store, "https://example.com/v")
	ctx := context.Background()

	rep := stage.NewReporter(store, job, nil)
	if err := rep.Advance(ctx, queue.StatusDownloading, 10); err != nil {
		t.Fatalf("Advance downloading: %v", err)
	}
	if err := rep.SetProgress(ctx, 30); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if err := rep.Advance(ctx, queue.StatusProcessing, -1); err != nil {
		t.Fatalf("Advance processing: %v", err)
	}
	if err := rep.SetProgress(ctx, 20); err != nil {
		t.Fatalf("SetProgress lower: %v", err)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != queue.StatusProcessing || got.Progress != 30 {
		t.Fatalf("expected processing at 30, got %s at %d", got.Status, got.Progress)
	}
	if rep.Status() != queue.StatusProcessing || rep.Progress() != 30 {
		t.Fatalf("reporter out of sync: %s %d", rep.Status(), rep.Progress())
	}
}

func TestReporterRejectsIllegalTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewGenerateJob(t, store, "deep sea creatures")
	ctx := context.Background()

	rep := stage.NewReporter(store, job, nil)
	for _, status := range []queue.Status{queue.StatusDownloading, queue.StatusCompleted, queue.StatusFailed, queue.StatusPending} {
		if err := rep.Advance(ctx, status, -1); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Advance(%s): expected validation error, got %v", status, err)
		}
	}
	got, _ := store.Get(ctx, job.ID)
	if got.Status != queue.StatusPending {
		t.Fatalf("expected job untouched, got %s", got.Status)
	}
}

func TestReporterLogsOnlyPersistForGenerate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	gen := testsupport.NewGenerateJob(t, store, "volcanoes")
	genRep := stage.NewReporter(store, gen, nil)
	for _, line := range []string{"Generating script...", "  ", "Fetching visuals..."} {
		if err := genRep.Log(ctx, line); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	clip := testsupport.NewClipJob(t, store, "https://example.com/v")
	if err := stage.NewReporter(store, clip, nil).Log(ctx, "Downloading"); err != nil {
		t.Fatalf("Log clip: %v", err)
	}

	gotGen, _ := store.Get(ctx, gen.ID)
	if len(gotGen.Logs) != 2 || gotGen.Logs[1] != "Fetching visuals..." {
		t.Fatalf("unexpected generate logs %v", gotGen.Logs)
	}
	gotClip, _ := store.Get(ctx, clip.ID)
	if len(gotClip.Logs) != 0 {
		t.Fatalf("expected no clip logs, got %v", gotClip.Logs)
	}
}

func TestReporterSkipsTerminalJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	job := testsupport.NewGenerateJob(t, store, "volcanoes")
	rep := stage.NewReporter(store, job, nil)

	if _, err := store.Fail(ctx, job.ID, "boom"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := rep.SetProgress(ctx, 50); err != nil {
		t.Fatalf("expected skipped update to be silent, got %v", err)
	}
	if err := rep.Advance(ctx, queue.StatusProcessing, 20); err != nil {
		t.Fatalf("expected skipped advance to be silent, got %v", err)
	}
	got, _ := store.Get(ctx, job.ID)
	if got.Status != queue.StatusFailed || got.Progress != 0 {
		t.Fatalf("terminal job changed: %s %d", got.Status, got.Progress)
	}
	if rep.Status() != queue.StatusPending {
		t.Fatalf("reporter should not record skipped transitions, got %s", rep.Status())
	}
}
