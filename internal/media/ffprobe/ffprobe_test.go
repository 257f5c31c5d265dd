package ffprobe_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shortforge/internal/media/ffprobe"
)

const sampleReport = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "duration": "61.2"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "duration": "61.0"}
  ],
  "format": {"filename": "in.mp4", "duration": "61.25", "size": "1000", "format_name": "mov,mp4"}
}`

func TestParseSummarizesStreams(t *testing.T) {
	result, err := ffprobe.Parse([]byte(sampleReport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	info := result.Info()
	if info.Duration != 61.25 || info.Width != 1920 || info.Height != 1080 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if !info.HasAudio || !info.HasVideo {
		t.Fatalf("expected audio and video: %+v", info)
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio", Duration: "12.5"}, {CodecType: "audio", Duration: "bad"}},
		Format:  ffprobe.Format{Duration: "N/A"},
	}
	if got := result.DurationSeconds(); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	info := result.Info()
	if info.HasVideo || info.Width != 0 {
		t.Fatalf("expected audio-only info, got %+v", info)
	}
}

func TestProberUsesRunner(t *testing.T) {
	var gotBinary string
	var gotArgs []string
	prober := ffprobe.Prober{
		Binary: "/opt/ffprobe",
		Run: func(_ context.Context, binary string, args ...string) ([]byte, error) {
			gotBinary = binary
			gotArgs = args
			return []byte(sampleReport), nil
		},
	}
	info, err := prober.Probe(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if gotBinary != "/opt/ffprobe" || gotArgs[len(gotArgs)-1] != "in.mp4" {
		t.Fatalf("unexpected invocation: %s %v", gotBinary, gotArgs)
	}
	if info.ShortEdge() != 1080 {
		t.Fatalf("unexpected short edge: %d", info.ShortEdge())
	}
}

func TestProberReportsFailure(t *testing.T) {
	prober := ffprobe.Prober{
		Run: func(context.Context, string, ...string) ([]byte, error) {
			return []byte("No such file"), errors.New("exit status 1")
		},
	}
	_, err := prober.Probe(context.Background(), "missing.mp4")
	if err == nil || !strings.Contains(err.Error(), "No such file") {
		t.Fatalf("expected wrapped output, got %v", err)
	}
	if _, err := prober.Probe(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
