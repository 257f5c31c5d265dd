// Package virality scores a rendered clip for short-form potential.
//
// The score is a weighted sum of five sub-scores, each in [0,1]: length (25),
// hook (30), pacing (20), captions (15) and visual quality (10). Every
// sub-analysis degrades to a neutral value on failure, and a file that cannot
// be read at all scores a flat 50. Score never returns an error.
package virality

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"shortforge/internal/logging"
	"shortforge/internal/media"
	"shortforge/internal/textutil"
	"shortforge/internal/transcript"
)

// Weights of each sub-score in the total.
const (
	WeightLength   = 25
	WeightHook     = 30
	WeightPacing   = 20
	WeightCaptions = 15
	WeightVisual   = 10
)

const (
	// NeutralScore is returned when the file cannot be analyzed at all.
	NeutralScore = 50.0
	neutral      = 0.5
	hookSeconds  = 3.0
)

// HookKeywords mark an attention-grabbing opening.
var HookKeywords = []string{"!", "?", "watch", "you", "this", "amazing", "incredible", "secret", "shocking"}

// Prober reads duration, dimensions, and stream presence from a file.
type Prober interface {
	Probe(ctx context.Context, path string) (media.Info, error)
}

// Breakdown reports the total and every normalized sub-score.
type Breakdown struct {
	Total    float64 `json:"total"`
	Length   float64 `json:"length"`
	Hook     float64 `json:"hook"`
	Pacing   float64 `json:"pacing"`
	Captions float64 `json:"captions"`
	Visual   float64 `json:"visual"`
	// Neutral is set when the file could not be analyzed and Total is the
	// fixed fallback.
	Neutral bool `json:"neutral,omitempty"`
}

// Scorer computes virality breakdowns.
type Scorer struct {
	prober      Prober
	transcriber transcript.Transcriber
	logger      *slog.Logger
}

// NewScorer builds a scorer. A nil transcriber scores hook and pacing as
// neutral.
func NewScorer(prober Prober, transcriber transcript.Transcriber, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scorer{
		prober:      prober,
		transcriber: transcriber,
		logger:      logging.NewComponentLogger(logger, "virality"),
	}
}

// Score analyzes the video at path.
func (s *Scorer) Score(ctx context.Context, videoPath string) Breakdown {
	if _, err := os.Stat(videoPath); err != nil {
		s.logger.Warn("virality scoring skipped; file unavailable",
			logging.String("path", videoPath),
			logging.Error(err),
			logging.String(logging.FieldEventType, "virality_neutral"),
			logging.String(logging.FieldErrorHint, "scoring is advisory; the job still completes"),
		)
		return neutralBreakdown()
	}
	if s.prober == nil {
		return neutralBreakdown()
	}
	info, err := s.prober.Probe(ctx, videoPath)
	if err != nil {
		s.logger.Warn("virality scoring skipped; probe failed",
			logging.String("path", videoPath),
			logging.Error(err),
			logging.String(logging.FieldEventType, "virality_neutral"),
			logging.String(logging.FieldErrorHint, "scoring is advisory; the job still completes"),
		)
		return neutralBreakdown()
	}

	b := Breakdown{
		Length:   LengthScore(info.Duration),
		Hook:     s.hookScore(ctx, videoPath, info),
		Pacing:   s.pacingScore(ctx, videoPath, info),
		Captions: CaptionScore(videoPath),
		Visual:   VisualScore(info),
	}
	b.Total = Combine(b)
	s.logger.Info("virality scored",
		logging.String("path", videoPath),
		logging.Float64("score", b.Total),
		logging.Float64("length", b.Length),
		logging.Float64("hook", b.Hook),
		logging.Float64("pacing", b.Pacing),
		logging.Float64("captions", b.Captions),
		logging.Float64("visual", b.Visual),
		logging.String(logging.FieldEventType, "virality_scored"),
	)
	return b
}

// Combine weights the sub-scores, clamps to [0,100] and rounds to 0.1.
func Combine(b Breakdown) float64 {
	total := b.Length*WeightLength +
		b.Hook*WeightHook +
		b.Pacing*WeightPacing +
		b.Captions*WeightCaptions +
		b.Visual*WeightVisual
	total = math.Max(0, math.Min(100, total))
	return math.Round(total*10) / 10
}

// LengthScore gives full credit for 15-60s and half credit for 10-15s or
// 60-90s.
func LengthScore(duration float64) float64 {
	switch {
	case duration >= 15 && duration <= 60:
		return 1.0
	case duration >= 10 && duration < 15, duration > 60 && duration <= 90:
		return 0.5
	default:
		return 0.2
	}
}

// HookScore rates the opening text.
func HookScore(text string) float64 {
	text = strings.TrimSpace(text)
	score := neutral
	if utf8.RuneCountInString(text) > 10 {
		score += 0.2
	}
	if textutil.ContainsAny(text, HookKeywords) {
		score += 0.3
	}
	return math.Min(1.0, score)
}

// PacingScore rates spoken words per second.
func PacingScore(words int, duration float64) float64 {
	if duration <= 0 {
		return neutral
	}
	wps := float64(words) / duration
	switch {
	case wps >= 2 && wps <= 4:
		return 1.0
	case wps >= 1.5 && wps < 2, wps > 4 && wps <= 5:
		return 0.7
	default:
		return 0.4
	}
}

// CaptionScore gives full credit when a sibling .srt exists.
func CaptionScore(videoPath string) float64 {
	srt := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	if info, err := os.Stat(srt); err == nil && !info.IsDir() {
		return 1.0
	}
	return 0.3
}

// VisualScore rates resolution by the short edge.
func VisualScore(info media.Info) float64 {
	edge := info.ShortEdge()
	switch {
	case edge <= 0:
		return neutral
	case edge >= 720:
		return 1.0
	case edge >= 480:
		return 0.7
	default:
		return 0.4
	}
}

func (s *Scorer) hookScore(ctx context.Context, path string, info media.Info) float64 {
	if !info.HasAudio || s.transcriber == nil {
		return neutral
	}
	span := transcript.Span{Start: 0, Duration: math.Min(hookSeconds, info.Duration)}
	segments, err := s.transcriber.Transcribe(ctx, path, span)
	if err != nil {
		s.degraded("hook", err)
		return neutral
	}
	return HookScore(transcript.FullText(segments))
}

func (s *Scorer) pacingScore(ctx context.Context, path string, info media.Info) float64 {
	if !info.HasAudio || s.transcriber == nil {
		return neutral
	}
	segments, err := s.transcriber.Transcribe(ctx, path, transcript.Span{})
	if err != nil {
		s.degraded("pacing", err)
		return neutral
	}
	return PacingScore(textutil.WordCount(transcript.FullText(segments)), info.Duration)
}

func (s *Scorer) degraded(component string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Warn("virality sub-score degraded to neutral",
		logging.String("sub_score", component),
		logging.Error(err),
		logging.String(logging.FieldEventType, "virality_degraded"),
		logging.String(logging.FieldErrorHint, "check transcription dependencies"),
	)
}

func neutralBreakdown() Breakdown {
	return Breakdown{
		Total:    NeutralScore,
		Length:   neutral,
		Hook:     neutral,
		Pacing:   neutral,
		Captions: neutral,
		Visual:   neutral,
		Neutral:  true,
	}
}
