package framing

import (
	"context"
	"math"
)

const (
	// SampleInterval is the cadence of face-position sampling in seconds.
	SampleInterval = 0.5
	// endOffset places the extra final sample just before the clip ends.
	endOffset = 0.1
	// CenterRatio is the neutral horizontal position.
	CenterRatio = 0.5
)

// TrackingPoint is a sampled face-center ratio at a time relative to the
// clip start.
type TrackingPoint struct {
	Time    float64 `json:"time"`
	CenterX float64 `json:"center_x"`
}

// FrameSource extracts a still image at an absolute source time and returns
// its path.
type FrameSource interface {
	ExtractFrame(ctx context.Context, at float64) (string, error)
}

// FaceLocator reports the horizontal face-center ratio in an image.
type FaceLocator interface {
	Locate(ctx context.Context, framePath string) (float64, error)
}

// SampleTimes returns the clip-relative sample times for a clip of the given
// duration.
func SampleTimes(duration float64) []float64 {
	if duration <= 0 {
		return nil
	}
	var times []float64
	for i := 0; ; i++ {
		t := float64(i) * SampleInterval
		if t >= duration {
			break
		}
		times = append(times, t)
	}
	if last := duration - endOffset; last > times[len(times)-1] {
		times = append(times, last)
	}
	return times
}

// Track samples face positions across [clipStart, clipStart+duration).
// Every failure mode yields the neutral center ratio for that sample.
func Track(ctx context.Context, frames FrameSource, locator FaceLocator, clipStart, duration float64) []TrackingPoint {
	times := SampleTimes(duration)
	points := make([]TrackingPoint, 0, len(times))
	for _, t := range times {
		points = append(points, TrackingPoint{Time: t, CenterX: locate(ctx, frames, locator, clipStart+t)})
	}
	return points
}

func locate(ctx context.Context, frames FrameSource, locator FaceLocator, at float64) float64 {
	if frames == nil || locator == nil || ctx.Err() != nil {
		return CenterRatio
	}
	framePath, err := frames.ExtractFrame(ctx, at)
	if err != nil || framePath == "" {
		return CenterRatio
	}
	ratio, err := locator.Locate(ctx, framePath)
	if err != nil {
		return CenterRatio
	}
	return ClampRatio(ratio)
}

// ClampRatio bounds a ratio to [0,1]; NaN becomes the center.
func ClampRatio(ratio float64) float64 {
	switch {
	case math.IsNaN(ratio):
		return CenterRatio
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	default:
		return ratio
	}
}
