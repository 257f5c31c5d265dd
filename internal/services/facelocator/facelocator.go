// Package facelocator runs an external face detector on a still frame and
// reports the horizontal center of the most prominent face.
//
// The detector is any command that prints JSON to stdout:
//
//	{"width": 1920, "faces": [{"x": 800, "y": 200, "w": 240, "h": 240}]}
//
// Coordinates are pixels. When width is omitted the frame is decoded to read
// it. An argument equal to "{frame}" is replaced with the frame path;
// otherwise the path is appended.
package facelocator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"shortforge/internal/framing"
	"shortforge/internal/media"
)

// FramePlaceholder marks where the frame path goes in Args.
const FramePlaceholder = "{frame}"

// Face is one detected bounding box.
type Face struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Report is the detector's output.
type Report struct {
	Width int    `json:"width"`
	Faces []Face `json:"faces"`
}

// Locator invokes the detector command.
type Locator struct {
	Command string
	Args    []string
	Run     media.Runner
}

// New returns a locator, or nil when no command is configured so framing
// falls back to the center.
func New(command string, args []string) *Locator {
	if strings.TrimSpace(command) == "" {
		return nil
	}
	return &Locator{Command: strings.TrimSpace(command), Args: args, Run: media.ExecRunner}
}

// Locate returns the face-center ratio in [0,1]; no faces yields the center.
func (l *Locator) Locate(ctx context.Context, framePath string) (float64, error) {
	run := l.Run
	if run == nil {
		run = media.ExecRunner
	}
	output, err := run(ctx, l.Command, l.args(framePath)...)
	if err != nil {
		return framing.CenterRatio, fmt.Errorf("face detector: %w: %s", err, strings.TrimSpace(string(output)))
	}
	var report Report
	if err := json.Unmarshal(output, &report); err != nil {
		return framing.CenterRatio, fmt.Errorf("face detector: parse output: %w", err)
	}
	if report.Width <= 0 {
		width, err := imageWidth(framePath)
		if err != nil {
			return framing.CenterRatio, err
		}
		report.Width = width
	}
	return report.CenterRatio(), nil
}

// CenterRatio returns the horizontal center of the largest face divided by
// the frame width.
func (r Report) CenterRatio() float64 {
	if r.Width <= 0 {
		return framing.CenterRatio
	}
	var best *Face
	for i := range r.Faces {
		f := &r.Faces[i]
		if f.W <= 0 || f.H <= 0 {
			continue
		}
		if best == nil || f.W*f.H > best.W*best.H {
			best = f
		}
	}
	if best == nil {
		return framing.CenterRatio
	}
	return framing.ClampRatio((best.X + best.W/2) / float64(r.Width))
}

func (l *Locator) args(framePath string) []string {
	args := make([]string, 0, len(l.Args)+1)
	replaced := false
	for _, arg := range l.Args {
		if arg == FramePlaceholder {
			arg = framePath
			replaced = true
		}
		args = append(args, arg)
	}
	if !replaced {
		args = append(args, framePath)
	}
	return args
}

func imageWidth(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("face detector: read frame size: %w", err)
	}
	if cfg.Width <= 0 {
		return 0, errors.New("face detector: frame has no width")
	}
	return cfg.Width, nil
}
