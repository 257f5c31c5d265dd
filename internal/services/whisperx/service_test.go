package whisperx_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"shortforge/internal/services"
	"shortforge/internal/services/whisperx"
	"shortforge/internal/transcript"
)

const samplePayload = `{"segments":[
  {"text":" Did you see that? ","start":0.5,"end":2.0,"words":[
    {"word":"Did","start":0.5,"end":0.7},
    {"word":"you","start":0.7,"end":0.9},
    {"word":"see"},
    {"word":"that?","start":1.2,"end":2.0}
  ]},
  {"text":"Unaligned.","start":2.5,"end":3.0}
]}`

type fakeRunner struct {
	calls   [][]string
	names   []string
	uvxErr  error
	payload string
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.names = append(f.names, name)
	f.calls = append(f.calls, args)
	if name != whisperx.UVXCommand {
		return nil, nil
	}
	if f.uvxErr != nil {
		return []byte("loading model\nCUDA out of memory"), f.uvxErr
	}
	idx := slices.Index(args, "--output_dir")
	if err := os.WriteFile(filepath.Join(args[idx+1], "audio.json"), []byte(f.payload), 0o644); err != nil {
		return nil, err
	}
	return nil, nil
}

func TestTranscribeParsesSegments(t *testing.T) {
	scratch := t.TempDir()
	runner := &fakeRunner{payload: samplePayload}
	svc := whisperx.NewService(whisperx.Config{ScratchDir: scratch, Language: "EN"})
	svc.WithCommandRunner(runner.run)

	segments, err := svc.Transcribe(context.Background(), "/media/in.mp4", transcript.Span{})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "Did you see that?" || len(segments[0].Words) != 3 {
		t.Fatalf("unexpected first segment: %+v", segments[0])
	}
	if segments[1].Words != nil {
		t.Fatalf("expected no words for unaligned segment, got %+v", segments[1].Words)
	}

	if runner.names[0] != "ffmpeg" || slices.Contains(runner.calls[0], "-ss") || slices.Contains(runner.calls[0], "-t") {
		t.Fatalf("unexpected extract call: %s %v", runner.names[0], runner.calls[0])
	}
	uvx := runner.calls[1]
	for _, want := range []string{"whisperx", "large-v3", "json", "en", "cpu"} {
		if !slices.Contains(uvx, want) {
			t.Fatalf("expected %q in whisperx args %v", want, uvx)
		}
	}

	entries, _ := os.ReadDir(scratch)
	if len(entries) != 0 {
		t.Fatalf("expected scratch dir cleaned up, found %d entries", len(entries))
	}
}

func TestTranscribeSpanLimitsExtraction(t *testing.T) {
	runner := &fakeRunner{payload: `{"segments":[]}`}
	svc := whisperx.NewService(whisperx.Config{ScratchDir: t.TempDir(), CUDAEnabled: true, VADMethod: "pyannote", HFToken: "hf"})
	svc.WithCommandRunner(runner.run)

	segments, err := svc.Transcribe(context.Background(), "in.mp4", transcript.Span{Start: 1, Duration: 3})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(segments))
	}
	extract := runner.calls[0]
	if i := slices.Index(extract, "-t"); i < 0 || extract[i+1] != "3.000" {
		t.Fatalf("expected -t 3.000 in %v", extract)
	}
	uvx := runner.calls[1]
	for _, want := range []string{"cuda", "--hf_token", whisperx.CUDAIndexURL} {
		if !slices.Contains(uvx, want) {
			t.Fatalf("expected %q in %v", want, uvx)
		}
	}
}

func TestTranscribeFailureIsExternalToolError(t *testing.T) {
	runner := &fakeRunner{uvxErr: errors.New("exit status 1")}
	svc := whisperx.NewService(whisperx.Config{ScratchDir: t.TempDir()})
	svc.WithCommandRunner(runner.run)

	_, err := svc.Transcribe(context.Background(), "in.mp4", transcript.Span{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, err := svc.Transcribe(context.Background(), " ", transcript.Span{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty path, got %v", err)
	}
}
