// Package engagement scores transcript segments by heuristic interest
// signals. Analyze is pure and deterministic: the same transcript always yields
// the same points.
package engagement

import (
	"strings"

	"shortforge/internal/textutil"
	"shortforge/internal/transcript"
)

// Signal tags joined into Point.Reason.
const (
	ReasonQuestion        = "question"
	ReasonExclamation     = "exclamation"
	ReasonEngagementWords = "engagement_words"
	ReasonOptimalLength   = "optimal_length"
	ReasonNormal          = "normal"
	ReasonNoAudio         = "no_audio"
)

const (
	baseScore          = 50
	questionBonus      = 20
	exclamationBonus   = 15
	keywordBonus       = 10
	lengthBonus        = 10
	optimalMinSeconds  = 5.0
	optimalMaxSeconds  = 15.0
	noAudioStepSeconds = 10.0
	snippetRunes       = 50
)

// Keywords are the engagement words matched case-insensitively as substrings.
var Keywords = []string{"you", "this", "watch", "amazing", "incredible", "secret", "shocking", "important"}

// Point is a timestamped interest score.
type Point struct {
	Time   float64 `json:"time"`
	Score  int     `json:"score"`
	Reason string  `json:"reason"`
	Text   string  `json:"text,omitempty"`
}

// Analyze turns a transcript into engagement points. Without audio it samples
// every 10s from zero with a neutral score.
func Analyze(duration float64, hasAudio bool, segments []transcript.Segment) []Point {
	if !hasAudio {
		return uniformPoints(duration)
	}
	points := make([]Point, 0, len(segments))
	for _, seg := range segments {
		points = append(points, ScoreSegment(seg))
	}
	return points
}

// ScoreSegment applies the additive signal rules to one segment.
func ScoreSegment(seg transcript.Segment) Point {
	score := baseScore
	var reasons []string

	if strings.Contains(seg.Text, "?") {
		score += questionBonus
		reasons = append(reasons, ReasonQuestion)
	}
	if strings.Contains(seg.Text, "!") {
		score += exclamationBonus
		reasons = append(reasons, ReasonExclamation)
	}
	if textutil.ContainsAny(seg.Text, Keywords) {
		score += keywordBonus
		reasons = append(reasons, ReasonEngagementWords)
	}
	if d := seg.End - seg.Start; d >= optimalMinSeconds && d <= optimalMaxSeconds {
		score += lengthBonus
		reasons = append(reasons, ReasonOptimalLength)
	}

	reason := ReasonNormal
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "_")
	}
	start := seg.Start
	if start < 0 {
		start = 0
	}
	return Point{
		Time:   start,
		Score:  clampScore(score),
		Reason: reason,
		Text:   textutil.Truncate(strings.TrimSpace(seg.Text), snippetRunes),
	}
}

func uniformPoints(duration float64) []Point {
	var points []Point
	for i := 0; ; i++ {
		t := float64(i) * noAudioStepSeconds
		if t >= duration {
			break
		}
		points = append(points, Point{Time: t, Score: baseScore, Reason: ReasonNoAudio})
	}
	return points
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
