package api_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shortforge/internal/api"
	"shortforge/internal/queue"
	"shortforge/internal/services"
	"shortforge/internal/testsupport"
)

type recordingQueue struct {
	ids []string
}

func (r *recordingQueue) Enqueue(id string) {
	r.ids = append(r.ids, id)
}

func newService(t *testing.T) (*api.Service, *queue.Store, *recordingQueue) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	q := &recordingQueue{}
	return api.NewService(store, q, cfg), store, q
}

func TestEnqueueClipJob(t *testing.T) {
	svc, store, q := newService(t)
	ctx := context.Background()

	id, err := svc.EnqueueClipJob(ctx, "  https://www.youtube.com/watch?v=abc  ", queue.DefaultClipOptions())
	if err != nil {
		t.Fatalf("EnqueueClipJob: %v", err)
	}
	if len(q.ids) != 1 || q.ids[0] != id {
		t.Fatalf("expected job enqueued, got %v", q.ids)
	}
	job, err := store.Get(ctx, id)
	if err != nil || job == nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Kind != queue.KindClip || job.Status != queue.StatusPending || job.Input != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.ClipOptions == nil || job.ClipOptions.MaxClips != 3 {
		t.Fatalf("expected persisted options, got %+v", job.ClipOptions)
	}
}

func TestEnqueueClipJobRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
		opts queue.ClipOptions
	}{
		{name: "empty", url: " ", opts: queue.DefaultClipOptions()},
		{name: "scheme", url: "ftp://example.com/v.mp4", opts: queue.DefaultClipOptions()},
		{name: "relative", url: "/videos/1", opts: queue.DefaultClipOptions()},
		{name: "no host", url: "https:///path", opts: queue.DefaultClipOptions()},
		{name: "max below min", url: "https://example.com/v", opts: queue.ClipOptions{MinDuration: 30, MaxDuration: 20, MaxClips: 1}},
		{name: "too many clips", url: "https://example.com/v", opts: queue.ClipOptions{MinDuration: 15, MaxDuration: 60, MaxClips: 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, q := newService(t)
			if _, err := svc.EnqueueClipJob(context.Background(), tt.url, tt.opts); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			jobs, err := store.List(context.Background(), 0, 0)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(jobs) != 0 || len(q.ids) != 0 {
				t.Fatalf("expected nothing persisted or queued")
			}
		})
	}
}

func TestEnqueueGenerationJob(t *testing.T) {
	svc, store, q := newService(t)
	ctx := context.Background()

	id, err := svc.EnqueueGenerationJob(ctx, "  the history of tea  ", queue.DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("EnqueueGenerationJob: %v", err)
	}
	job, _ := store.Get(ctx, id)
	if job.Input != "the history of tea" || job.Kind != queue.KindGenerate {
		t.Fatalf("unexpected job %+v", job)
	}
	if len(q.ids) != 1 {
		t.Fatalf("expected one enqueue, got %v", q.ids)
	}

	for _, topic := range []string{"ab", "  a ", strings.Repeat("x", 201)} {
		if _, err := svc.EnqueueGenerationJob(ctx, topic, queue.DefaultGenerateOptions()); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("topic %q: expected validation error, got %v", topic, err)
		}
	}
	if _, err := svc.EnqueueGenerationJob(ctx, "茶の歴史", queue.DefaultGenerateOptions()); err != nil {
		t.Fatalf("expected multibyte topic accepted: %v", err)
	}
	if _, err := svc.EnqueueGenerationJob(ctx, "valid topic", queue.GenerateOptions{Voice: " ", MaxFootage: 5}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected voice validation error, got %v", err)
	}
}

func TestGetJob(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.GetJob(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	id, err := svc.EnqueueGenerationJob(ctx, "space probes", queue.DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	job, err := svc.GetJob(ctx, id)
	if err != nil || job.ID != id {
		t.Fatalf("GetJob: %v %+v", err, job)
	}
}

func TestListJobsPaging(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	var ids []string
	for _, topic := range []string{"first topic", "second topic", "third topic"} {
		id, err := svc.EnqueueGenerationJob(ctx, topic, queue.DefaultGenerateOptions())
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		ids = append(ids, id)
	}

	jobs, err := svc.ListJobs(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 3 || jobs[0].ID != ids[2] || jobs[2].ID != ids[0] {
		t.Fatalf("expected newest first, got %d jobs", len(jobs))
	}
	page, err := svc.ListJobs(ctx, 1, 1)
	if err != nil || len(page) != 1 || page[0].ID != ids[1] {
		t.Fatalf("unexpected page %v %v", page, err)
	}
	if _, err := svc.ListJobs(ctx, 10, -1); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for negative offset, got %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{-5: 50, 0: 50, 1: 1, 200: 200, 201: 200, 5000: 200}
	for in, want := range tests {
		if got := api.ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestOptionsFillDefaults(t *testing.T) {
	svc, _, _ := newService(t)
	burn := false
	clip := svc.ClipOptions(&api.ClipOptions{MaxClips: 2, BurnCaptions: &burn})
	if clip.MaxClips != 2 || clip.BurnCaptions || clip.MinDuration != 15 || clip.MaxDuration != 60 {
		t.Fatalf("unexpected clip options %+v", clip)
	}
	gen := svc.GenerateOptions(&api.GenerateOptions{MaxFootage: 3})
	if gen.MaxFootage != 3 || gen.Voice != queue.DefaultVoice {
		t.Fatalf("unexpected generate options %+v", gen)
	}
}
