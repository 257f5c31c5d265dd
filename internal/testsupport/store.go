package testsupport

import (
	"context"
	"testing"

	"shortforge/internal/config"
	"shortforge/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewClipJob creates a pending clip job with default options.
func NewClipJob(t testing.TB, store *queue.Store, url string) *queue.Job {
	t.Helper()

	opts := queue.DefaultClipOptions()
	job := &queue.Job{Kind: queue.KindClip, Input: url, ClipOptions: &opts}
	if _, err := store.Create(context.Background(), job); err != nil {
		t.Fatalf("store.Create clip: %v", err)
	}
	return job
}

// NewGenerateJob creates a pending generate job with default options.
func NewGenerateJob(t testing.TB, store *queue.Store, topic string) *queue.Job {
	t.Helper()

	opts := queue.DefaultGenerateOptions()
	job := &queue.Job{Kind: queue.KindGenerate, Input: topic, GenerateOptions: &opts}
	if _, err := store.Create(context.Background(), job); err != nil {
		t.Fatalf("store.Create generate: %v", err)
	}
	return job
}

// MustAdvance walks a job through the given statuses and fails the test if
// any step is not applied.
func MustAdvance(t testing.TB, store *queue.Store, id string, statuses ...queue.Status) {
	t.Helper()

	for _, status := range statuses {
		applied, err := store.Update(context.Background(), id, queue.StatusPatch(status))
		if err != nil {
			t.Fatalf("advance %s to %s: %v", id, status, err)
		}
		if !applied {
			t.Fatalf("advance %s to %s: not applied", id, status)
		}
	}
}
