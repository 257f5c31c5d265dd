package queue_test

import (
	"errors"
	"testing"

	"shortforge/internal/queue"
	"shortforge/internal/services"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from queue.Status
		to   queue.Status
		want bool
	}{
		{queue.StatusPending, queue.StatusDownloading, true},
		{queue.StatusPending, queue.StatusProcessing, true},
		{queue.StatusPending, queue.StatusFailed, true},
		{queue.StatusPending, queue.StatusCompleted, false},
		{queue.StatusDownloading, queue.StatusProcessing, true},
		{queue.StatusDownloading, queue.StatusPending, false},
		{queue.StatusProcessing, queue.StatusCompleted, true},
		{queue.StatusProcessing, queue.StatusFailed, true},
		{queue.StatusProcessing, queue.StatusProcessing, false},
		{queue.StatusCompleted, queue.StatusFailed, false},
		{queue.StatusFailed, queue.StatusPending, false},
		{queue.StatusPending, queue.Status("archived"), false},
	}
	for _, tc := range tests {
		if got := queue.CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanTransitionKind(t *testing.T) {
	if queue.CanTransitionKind(queue.KindGenerate, queue.StatusPending, queue.StatusDownloading) {
		t.Fatal("generate jobs never download")
	}
	if !queue.CanTransitionKind(queue.KindClip, queue.StatusPending, queue.StatusDownloading) {
		t.Fatal("clip jobs start by downloading")
	}
	if queue.KindClip.FirstActiveStatus() != queue.StatusDownloading {
		t.Fatal("unexpected first status for clip")
	}
	if queue.KindGenerate.FirstActiveStatus() != queue.StatusProcessing {
		t.Fatal("unexpected first status for generate")
	}
}

func TestParseStatusAndKind(t *testing.T) {
	if status, ok := queue.ParseStatus(" Processing "); !ok || status != queue.StatusProcessing {
		t.Fatalf("unexpected parse result: %q %v", status, ok)
	}
	if _, ok := queue.ParseStatus("review"); ok {
		t.Fatal("expected unknown status to fail")
	}
	if _, err := queue.ParseKind("remix"); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}

func TestClipOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts queue.ClipOptions
		ok   bool
	}{
		{"defaults", queue.DefaultClipOptions(), true},
		{"min too small", queue.ClipOptions{MinDuration: 4, MaxDuration: 60, MaxClips: 3}, false},
		{"max too large", queue.ClipOptions{MinDuration: 15, MaxDuration: 121, MaxClips: 3}, false},
		{"max below min", queue.ClipOptions{MinDuration: 50, MaxDuration: 40, MaxClips: 3}, false},
		{"zero clips", queue.ClipOptions{MinDuration: 15, MaxDuration: 60, MaxClips: 0}, false},
		{"edge bounds", queue.ClipOptions{MinDuration: 5, MaxDuration: 15, MaxClips: 10}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGenerateOptionsValidate(t *testing.T) {
	if err := queue.DefaultGenerateOptions().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	for _, opts := range []queue.GenerateOptions{
		{Voice: "", MaxFootage: 5},
		{Voice: "en US", MaxFootage: 5},
		{Voice: "en-US-AriaNeural", MaxFootage: 11},
	} {
		if err := opts.Validate(); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", opts, err)
		}
	}
}
