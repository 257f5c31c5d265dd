package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"shortforge/internal/media"
	"shortforge/internal/media/ffmpeg"
	"shortforge/internal/services/llm"
	"shortforge/internal/transcript"
	"shortforge/internal/virality"
)

func writeBytes(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("data"), 0o644)
}

type fakeDownloader struct {
	err  error
	path string
}

func (f *fakeDownloader) Download(_ context.Context, _ string, destDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.path = filepath.Join(destDir, "source.mp4")
	return f.path, writeBytes(f.path)
}

type fakeProber struct {
	info media.Info
	err  error
}

func (f fakeProber) Probe(context.Context, string) (media.Info, error) {
	return f.info, f.err
}

type fakeTranscriber struct {
	segments []transcript.Segment
	err      error
	calls    int
}

func (f *fakeTranscriber) Transcribe(context.Context, string, transcript.Span) ([]transcript.Segment, error) {
	f.calls++
	return f.segments, f.err
}

type fakeEncoder struct {
	mu   sync.Mutex
	req  ffmpeg.ClipRequest
	err  error
	seen bool
}

func (f *fakeEncoder) EncodeClip(_ context.Context, req ffmpeg.ClipRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.req = req
	f.seen = true
	if err := writeBytes(req.Output); err != nil {
		return err
	}
	return f.err
}

type fakeScorer struct {
	total   float64
	neutral bool
	paths   []string
}

func (f *fakeScorer) Score(_ context.Context, path string) virality.Breakdown {
	f.paths = append(f.paths, path)
	return virality.Breakdown{Total: f.total, Neutral: f.neutral}
}

type fakeWriter struct {
	script llm.Script
	err    error
}

func (f fakeWriter) GenerateScript(context.Context, string) (llm.Script, error) {
	return f.script, f.err
}

type fakeFootage struct {
	count    int
	err      error
	keywords []string
	limit    int
}

func (f *fakeFootage) Fetch(_ context.Context, keywords []string, limit int, destDir string) ([]string, error) {
	f.keywords = keywords
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	var paths []string
	for i := 0; i < f.count; i++ {
		path := filepath.Join(destDir, string(rune('a'+i))+".mp4")
		if err := writeBytes(path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type fakeSpeech struct {
	text  string
	voice string
}

func (f *fakeSpeech) Synthesize(_ context.Context, text, voice, output string) error {
	f.text = text
	f.voice = voice
	return writeBytes(output)
}

type fakeAssembler struct {
	req ffmpeg.AssembleRequest
	err error
}

func (f *fakeAssembler) Assemble(_ context.Context, req ffmpeg.AssembleRequest) error {
	f.req = req
	if f.err != nil {
		return f.err
	}
	return writeBytes(req.Output)
}

var errTool = errors.New("tool exploded")
