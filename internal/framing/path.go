package framing

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// flatTolerance merges neighbouring samples whose ratios differ by less.
const flatTolerance = 1e-4

// Path is a piecewise-linear center ratio over clip time.
type Path struct {
	points []TrackingPoint
}

// NewPath builds a path from tracking points. Points are sorted by time and
// their ratios clamped; the input slice is not modified.
func NewPath(points []TrackingPoint) Path {
	sorted := make([]TrackingPoint, len(points))
	for i, p := range points {
		sorted[i] = TrackingPoint{Time: p.Time, CenterX: ClampRatio(p.CenterX)}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return Path{points: sorted}
}

// Points returns a copy of the path's samples.
func (p Path) Points() []TrackingPoint {
	out := make([]TrackingPoint, len(p.points))
	copy(out, p.points)
	return out
}

// At returns the interpolated ratio at clip time t. Outside the sampled range
// it holds the first or last value; an empty path is centered.
func (p Path) At(t float64) float64 {
	n := len(p.points)
	if n == 0 {
		return CenterRatio
	}
	if t <= p.points[0].Time {
		return p.points[0].CenterX
	}
	if t >= p.points[n-1].Time {
		return p.points[n-1].CenterX
	}
	i := sort.Search(n, func(i int) bool { return p.points[i].Time >= t })
	right := p.points[i]
	if right.Time == t {
		return right.CenterX
	}
	left := p.points[i-1]
	span := right.Time - left.Time
	if span <= 0 {
		return right.CenterX
	}
	frac := (t - left.Time) / span
	return left.CenterX + (right.CenterX-left.CenterX)*frac
}

// Simplify drops interior samples that lie on a flat run, which keeps the
// rendered expression short for mostly static shots.
func (p Path) Simplify() Path {
	if len(p.points) <= 2 {
		return Path{points: p.Points()}
	}
	out := []TrackingPoint{p.points[0]}
	for i := 1; i < len(p.points)-1; i++ {
		prev := out[len(out)-1]
		next := p.points[i+1]
		cur := p.points[i]
		if math.Abs(cur.CenterX-prev.CenterX) < flatTolerance && math.Abs(cur.CenterX-next.CenterX) < flatTolerance {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, p.points[len(p.points)-1])
	return Path{points: out}
}

// IsStatic reports whether the path never leaves its first value.
func (p Path) IsStatic() bool {
	for _, pt := range p.points {
		if math.Abs(pt.CenterX-p.points[0].CenterX) >= flatTolerance {
			return false
		}
	}
	return true
}

// Expression renders the path as an ffmpeg expression in the variable t. It
// is a flat sum with one gated linear term per segment, so its nesting depth
// stays constant however many samples the clip has:
//
//	lt(t,t0)*c0+gte(t,t0)*lt(t,t1)*(c0+(s0)*(t-t0))+...+gte(t,tn)*cn
//
// ffmpeg rejects expressions nested past 100 levels, which a chain of if()
// terms reaches on clips of about a minute.
func (p Path) Expression() string {
	simplified := p.Simplify()
	pts := simplified.points
	switch {
	case len(pts) == 0:
		return formatFloat(CenterRatio)
	case simplified.IsStatic():
		return formatFloat(pts[0].CenterX)
	}

	first, last := pts[0], pts[len(pts)-1]
	terms := []string{fmt.Sprintf("lt(t,%s)*%s", formatFloat(first.Time), formatFloat(first.CenterX))}
	for i := 1; i < len(pts); i++ {
		left, right := pts[i-1], pts[i]
		span := right.Time - left.Time
		if span <= 0 {
			continue
		}
		slope := (right.CenterX - left.CenterX) / span
		terms = append(terms, fmt.Sprintf("gte(t,%s)*lt(t,%s)*(%s+(%s)*(t-%s))",
			formatFloat(left.Time), formatFloat(right.Time),
			formatFloat(left.CenterX), formatFloat(slope), formatFloat(left.Time)))
	}
	terms = append(terms, fmt.Sprintf("gte(t,%s)*%s", formatFloat(last.Time), formatFloat(last.CenterX)))
	return strings.Join(terms, "+")
}

func formatFloat(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
