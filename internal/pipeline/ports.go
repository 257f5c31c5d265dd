package pipeline

import (
	"context"

	"shortforge/internal/framing"
	"shortforge/internal/media"
	"shortforge/internal/media/ffmpeg"
	"shortforge/internal/services/llm"
	"shortforge/internal/transcript"
	"shortforge/internal/virality"
)

// Downloader fetches a source URL into a directory.
type Downloader interface {
	Download(ctx context.Context, url, destDir string) (string, error)
}

// Prober reads duration, dimensions, and stream presence.
type Prober interface {
	Probe(ctx context.Context, path string) (media.Info, error)
}

// Transcriber turns audio into timed segments.
type Transcriber = transcript.Transcriber

// FrameSource opens a frame extractor over one source file.
type FrameSource interface {
	Frames(source, dir string) framing.FrameSource
}

// FaceLocator reports the face-center ratio of a frame.
type FaceLocator = framing.FaceLocator

// Encoder renders a vertical clip.
type Encoder interface {
	EncodeClip(ctx context.Context, req ffmpeg.ClipRequest) error
}

// Assembler renders footage over narration.
type Assembler interface {
	Assemble(ctx context.Context, req ffmpeg.AssembleRequest) error
}

// SpeechSynthesizer speaks text into an audio file.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice, output string) error
}

// FootageSearcher downloads stock footage for keywords.
type FootageSearcher interface {
	Fetch(ctx context.Context, keywords []string, limit int, destDir string) ([]string, error)
}

// ScriptGenerator writes a narration script for a topic.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, topic string) (llm.Script, error)
}

// ViralityScorer rates a rendered video. It never fails.
type ViralityScorer interface {
	Score(ctx context.Context, path string) virality.Breakdown
}

// configurable is implemented by adapters that need credentials.
type configurable interface {
	Configured() bool
}
