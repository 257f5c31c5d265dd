// Package transcript defines the timed transcript shape shared by the
// transcriber, the engagement analyzer, captions, and virality scoring.
package transcript

import (
	"context"
	"strings"
)

// Word is one timed word.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Segment is one timed utterance with optional word timings.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Duration returns the segment length in seconds, never negative.
func (s Segment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// FullText joins the trimmed text of every segment with single spaces.
func FullText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Words flattens word timings across segments. Segments without word timings
// contribute their words spread evenly across the segment span.
func Words(segments []Segment) []Word {
	var out []Word
	for _, seg := range segments {
		if len(seg.Words) > 0 {
			for _, w := range seg.Words {
				if strings.TrimSpace(w.Text) == "" {
					continue
				}
				out = append(out, w)
			}
			continue
		}
		fields := strings.Fields(seg.Text)
		if len(fields) == 0 {
			continue
		}
		step := seg.Duration() / float64(len(fields))
		for i, field := range fields {
			start := seg.Start + float64(i)*step
			out = append(out, Word{Start: start, End: start + step, Text: field})
		}
	}
	return out
}

// Window returns the words overlapping [start, end) shifted so that start
// becomes zero. Word bounds are clipped to the window.
func Window(words []Word, start, end float64) []Word {
	var out []Word
	for _, w := range words {
		if w.End <= start || w.Start >= end {
			continue
		}
		ws := w.Start
		if ws < start {
			ws = start
		}
		we := w.End
		if we > end {
			we = end
		}
		out = append(out, Word{Start: ws - start, End: we - start, Text: strings.TrimSpace(w.Text)})
	}
	return out
}

// Span selects part of a media file; a zero Duration runs to the end.
type Span struct {
	Start    float64
	Duration float64
}

// Transcriber turns the audio of a media file into timed segments. An empty
// result is valid and means no speech was found.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string, span Span) ([]Segment, error)
}
