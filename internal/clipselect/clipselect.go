// Package clipselect turns engagement points into a set of non-overlapping
// clip windows.
package clipselect

import (
	"sort"

	"shortforge/internal/engagement"
	"shortforge/internal/queue"
)

// Reason tags for windows not derived from a single engagement point.
const (
	ReasonFallback      = "fallback"
	ReasonEvenlySpaced  = "evenly_spaced"
	ReasonTooShort      = "too_short"
	fallbackScore       = 40
	evenlySpacedScore   = 50
	tooShortScore       = 50
	candidateMultiplier = 3
)

// Options bounds the selection.
type Options struct {
	MinDuration float64
	MaxDuration float64
	MaxClips    int
}

// FromClipOptions copies the selection bounds out of persisted job options.
func FromClipOptions(opts queue.ClipOptions) Options {
	return Options{MinDuration: opts.MinDuration, MaxDuration: opts.MaxDuration, MaxClips: opts.MaxClips}
}

// Validate applies the same bounds as queue.ClipOptions.
func (o Options) Validate() error {
	return queue.ClipOptions{MinDuration: o.MinDuration, MaxDuration: o.MaxDuration, MaxClips: o.MaxClips}.Validate()
}

// Candidate is one selected clip window.
type Candidate struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Score  int     `json:"score"`
	Reason string  `json:"reason"`
}

// Duration returns the window width in seconds.
func (c Candidate) Duration() float64 {
	return c.End - c.Start
}

func (c Candidate) overlaps(start, end float64) bool {
	return start < c.End && c.Start < end
}

// TooShort is the single whole-video candidate used when the source is
// shorter than the minimum clip duration.
func TooShort(total float64) Candidate {
	return Candidate{Start: 0, End: total, Score: tooShortScore, Reason: ReasonTooShort}
}

// Select picks up to MaxClips non-overlapping windows. Every returned window
// lies within [0, total] and has a width within [MinDuration, MaxDuration].
func Select(points []engagement.Point, total float64, opts Options) ([]Candidate, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return sortCandidates(evenlySpaced(total, opts), opts.MaxClips), nil
	}

	ranked := make([]engagement.Point, len(points))
	copy(ranked, points)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if limit := opts.MaxClips * candidateMultiplier; len(ranked) > limit {
		ranked = ranked[:limit]
	}

	var accepted []Candidate
	for _, point := range ranked {
		if len(accepted) >= opts.MaxClips {
			break
		}
		start, end := window(point.Time, total, opts)
		if end-start < opts.MinDuration || overlapsAny(accepted, start, end) {
			continue
		}
		accepted = append(accepted, Candidate{Start: start, End: end, Score: point.Score, Reason: point.Reason})
	}

	if remaining := opts.MaxClips - len(accepted); remaining > 0 {
		accepted = append(accepted, fillers(accepted, total, remaining, opts)...)
	}
	return sortCandidates(accepted, opts.MaxClips), nil
}

// window centers a MinDuration-wide window on t and clips it to
// [0, total]. Near the end of the video the clipped window may be narrower
// than MinDuration; Select rejects it rather than moving it.
func window(t, total float64, opts Options) (float64, float64) {
	start := max(0, t-opts.MinDuration/2)
	end := min(total, start+opts.MinDuration, start+opts.MaxDuration)
	return start, end
}

// fillers lays slots of clamp(total/(remaining+1)) width back to back from
// zero and keeps those that do not collide with accepted windows.
func fillers(accepted []Candidate, total float64, remaining int, opts Options) []Candidate {
	width := clamp(total/float64(remaining+1), opts.MinDuration, opts.MaxDuration)
	var out []Candidate
	for start := 0.0; start < total && len(out) < remaining; start += width {
		end := start + width
		if end > total {
			end = total
		}
		if end-start < opts.MinDuration {
			break
		}
		if overlapsAny(accepted, start, end) || overlapsAny(out, start, end) {
			continue
		}
		out = append(out, Candidate{Start: start, End: end, Score: fallbackScore, Reason: ReasonFallback})
	}
	return out
}

func evenlySpaced(total float64, opts Options) []Candidate {
	width := clamp(total/float64(opts.MaxClips), opts.MinDuration, opts.MaxDuration)
	var out []Candidate
	for i := 0; i < opts.MaxClips; i++ {
		start := float64(i) * width
		end := start + width
		if end > total {
			end = total
		}
		if end-start < opts.MinDuration {
			break
		}
		out = append(out, Candidate{Start: start, End: end, Score: evenlySpacedScore, Reason: ReasonEvenlySpaced})
	}
	return out
}

func overlapsAny(candidates []Candidate, start, end float64) bool {
	for _, c := range candidates {
		if c.overlaps(start, end) {
			return true
		}
	}
	return false
}

func sortCandidates(candidates []Candidate, limit int) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Start < candidates[j].Start
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
