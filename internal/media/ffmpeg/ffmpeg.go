package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"shortforge/internal/config"
	"shortforge/internal/framing"
	"shortforge/internal/media"
	"shortforge/internal/services"
)

// Tool runs ffmpeg with shared encoding settings.
type Tool struct {
	Binary       string
	Preset       string
	CRF          int
	AudioBitrate string
	Width        int
	Height       int
	FPS          int
	Run          media.Runner
}

// New builds a Tool from configuration.
func New(cfg *config.Config) *Tool {
	return &Tool{
		Binary:       cfg.Encoding.FFmpegBinary,
		Preset:       cfg.Encoding.Preset,
		CRF:          cfg.Encoding.CRF,
		AudioBitrate: cfg.Encoding.AudioBitrate,
		Width:        cfg.Generate.Width,
		Height:       cfg.Generate.Height,
		FPS:          cfg.Generate.FPS,
		Run:          media.ExecRunner,
	}
}

func (t *Tool) binary() string {
	if b := strings.TrimSpace(t.Binary); b != "" {
		return b
	}
	return "ffmpeg"
}

func (t *Tool) dimensions() (int, int) {
	w, h := t.Width, t.Height
	if w <= 0 || h <= 0 {
		return 1080, 1920
	}
	return w, h
}

func (t *Tool) run(ctx context.Context, stage, operation string, args []string) error {
	run := t.Run
	if run == nil {
		run = media.ExecRunner
	}
	output, err := run(ctx, t.binary(), args...)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stage, operation, tail(string(output)), err)
	}
	return nil
}

// ExtractFrameArgs seeks to at seconds and writes one JPEG frame.
func ExtractFrameArgs(source string, at float64, dest string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", seconds(at),
		"-i", source,
		"-frames:v", "1",
		"-q:v", "2",
		dest,
	}
}

// ExtractFrame writes the frame at the given source time to dest.
func (t *Tool) ExtractFrame(ctx context.Context, source string, at float64, dest string) error {
	return t.run(ctx, "framing", "extract frame", ExtractFrameArgs(source, at, dest))
}

// FrameExtractor serves frames of one source into a scratch directory.
type FrameExtractor struct {
	tool   *Tool
	source string
	dir    string
	count  int
}

// Frames returns a frame source for source writing into dir.
func (t *Tool) Frames(source, dir string) framing.FrameSource {
	return &FrameExtractor{tool: t, source: source, dir: dir}
}

// ExtractFrame writes the frame at the absolute source time and returns its
// path.
func (f *FrameExtractor) ExtractFrame(ctx context.Context, at float64) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", err
	}
	f.count++
	dest := filepath.Join(f.dir, fmt.Sprintf("frame_%05d.jpg", f.count))
	if err := f.tool.ExtractFrame(ctx, f.source, at, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func seconds(v float64) string {
	if v < 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// tail keeps the last lines of ffmpeg output for error messages.
func tail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	msg := strings.TrimSpace(strings.Join(lines, " | "))
	if msg == "" {
		return "ffmpeg failed"
	}
	return msg
}
