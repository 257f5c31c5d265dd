package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultSegmentSeconds is the longest run of a single footage clip.
const DefaultSegmentSeconds = 4.0

// AssembleRequest describes a generated video: footage looped over a
// narration track.
type AssembleRequest struct {
	Footage        []string
	Narration      string
	Duration       float64
	SegmentSeconds float64
	Output         string
}

// Segment is one footage slice in the assembled timeline.
type Segment struct {
	Source   string
	Duration float64
}

// Timeline cycles through footage in order, each slice at most segment
// seconds, until duration is covered.
func Timeline(footage []string, duration, segment float64) []Segment {
	if len(footage) == 0 || duration <= 0 {
		return nil
	}
	if segment <= 0 {
		segment = DefaultSegmentSeconds
	}
	var out []Segment
	remaining := duration
	for i := 0; remaining > 1e-6; i++ {
		d := math.Min(segment, remaining)
		out = append(out, Segment{Source: footage[i%len(footage)], Duration: d})
		remaining -= d
	}
	return out
}

// AssembleArgs builds the ffmpeg arguments for req.
func (t *Tool) AssembleArgs(req AssembleRequest) ([]string, error) {
	timeline := Timeline(req.Footage, req.Duration, req.SegmentSeconds)
	if len(timeline) == 0 {
		return nil, errors.New("assemble: no footage or zero narration length")
	}
	if strings.TrimSpace(req.Narration) == "" {
		return nil, errors.New("assemble: narration path required")
	}
	w, h := t.dimensions()
	fps := t.FPS
	if fps <= 0 {
		fps = 24
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	var graph strings.Builder
	for i, seg := range timeline {
		args = append(args, "-stream_loop", "-1", "-t", seconds(seg.Duration), "-i", seg.Source)
		fmt.Fprintf(&graph,
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d,setsar=1,trim=duration=%s,setpts=PTS-STARTPTS[v%d];",
			i, w, h, w, h, fps, seconds(seg.Duration), i)
	}
	for i := range timeline {
		fmt.Fprintf(&graph, "[v%d]", i)
	}
	fmt.Fprintf(&graph, "concat=n=%d:v=1:a=0[outv]", len(timeline))

	audioIndex := len(timeline)
	args = append(args, "-i", req.Narration,
		"-filter_complex", graph.String(),
		"-map", "[outv]",
		"-map", strconv.Itoa(audioIndex)+":a",
	)
	args = append(args, t.videoCodecArgs()...)
	args = append(args, t.audioCodecArgs()...)
	args = append(args, "-t", seconds(req.Duration), "-movflags", "+faststart", req.Output)
	return args, nil
}

// Assemble renders req.Output.
func (t *Tool) Assemble(ctx context.Context, req AssembleRequest) error {
	args, err := t.AssembleArgs(req)
	if err != nil {
		return err
	}
	return t.run(ctx, "assembly", "assemble video", args)
}
