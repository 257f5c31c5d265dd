package ffmpeg

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"shortforge/internal/framing"
)

// ClipRequest describes one vertical clip render.
type ClipRequest struct {
	Source   string
	Output   string
	Start    float64
	Duration float64
	Geometry framing.Geometry
	Path     framing.Path
	HasAudio bool
	// Subtitles, when set, is an SRT file burned into the picture.
	Subtitles string
}

// VideoFilter returns the crop, scale and optional subtitles chain.
func (t *Tool) VideoFilter(req ClipRequest) string {
	w, h := t.dimensions()
	filters := []string{
		req.Geometry.CropFilter(req.Path),
		"scale=" + strconv.Itoa(w) + ":" + strconv.Itoa(h),
		"setsar=1",
	}
	if sub := strings.TrimSpace(req.Subtitles); sub != "" {
		filters = append(filters, "subtitles=filename="+EscapeFilterPath(sub))
	}
	return strings.Join(filters, ",")
}

// ClipArgs builds the ffmpeg arguments for a clip render.
func (t *Tool) ClipArgs(req ClipRequest) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", seconds(req.Start),
		"-t", seconds(req.Duration),
		"-i", req.Source,
		"-vf", t.VideoFilter(req),
	}
	args = append(args, t.videoCodecArgs()...)
	if req.HasAudio {
		args = append(args, t.audioCodecArgs()...)
	} else {
		args = append(args, "-an")
	}
	return append(args, "-movflags", "+faststart", req.Output)
}

// EncodeClip renders the clip described by req.
func (t *Tool) EncodeClip(ctx context.Context, req ClipRequest) error {
	if req.Duration <= 0 {
		return errors.New("encode clip: non-positive duration")
	}
	if req.Geometry.TargetWidth() <= 0 {
		return errors.New("encode clip: unknown source dimensions")
	}
	return t.run(ctx, "encoding", "encode clip", t.ClipArgs(req))
}

func (t *Tool) videoCodecArgs() []string {
	preset := strings.TrimSpace(t.Preset)
	if preset == "" {
		preset = "veryfast"
	}
	return []string{
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(t.CRF),
		"-pix_fmt", "yuv420p",
	}
}

func (t *Tool) audioCodecArgs() []string {
	bitrate := strings.TrimSpace(t.AudioBitrate)
	if bitrate == "" {
		bitrate = "128k"
	}
	return []string{"-c:a", "aac", "-b:a", bitrate}
}

// EscapeFilterPath escapes a file path for use as a filter option inside a
// filtergraph: once for the option parser and once for the graph parser.
func EscapeFilterPath(path string) string {
	option := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`).Replace(path)
	return strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
	).Replace(option)
}
