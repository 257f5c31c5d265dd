// Package captions renders SRT subtitles from timed transcript words.
package captions

import (
	"fmt"
	"math"
	"os"
	"strings"

	"shortforge/internal/transcript"
)

const (
	// DefaultWordsPerCue groups this many words into one cue.
	DefaultWordsPerCue = 4
	// maxCueSeconds splits a cue early when words are sparse.
	maxCueSeconds = 3.0
	// minCueSeconds stretches very short cues so they stay readable.
	minCueSeconds = 0.3
)

// Cue is one numbered subtitle.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// BuildCues groups words into cues of at most wordsPerCue words, starting a
// new cue when the running cue would exceed three seconds. Cues never overlap.
func BuildCues(words []transcript.Word, wordsPerCue int) []Cue {
	if wordsPerCue <= 0 {
		wordsPerCue = DefaultWordsPerCue
	}
	var (
		cues    []Cue
		current []transcript.Word
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, 0, len(current))
		for _, w := range current {
			texts = append(texts, strings.TrimSpace(w.Text))
		}
		cues = append(cues, Cue{
			Start: current[0].Start,
			End:   current[len(current)-1].End,
			Text:  strings.Join(texts, " "),
		})
		current = current[:0]
	}
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		if len(current) > 0 && (len(current) >= wordsPerCue || w.End-current[0].Start > maxCueSeconds) {
			flush()
		}
		current = append(current, w)
	}
	flush()

	for i := range cues {
		if cues[i].End-cues[i].Start < minCueSeconds {
			cues[i].End = cues[i].Start + minCueSeconds
		}
		if i+1 < len(cues) && cues[i].End > cues[i+1].Start {
			cues[i].End = cues[i+1].Start
		}
		if cues[i].End <= cues[i].Start {
			cues[i].End = cues[i].Start + 0.001
		}
	}
	return cues
}

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Render produces the SRT document for the cues.
func Render(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(cue.Start), FormatTimestamp(cue.End), cue.Text)
	}
	return b.String()
}

// WriteSRT writes the cues to path. It returns the number of cues written;
// an empty cue list still produces an empty file so the artifact exists.
func WriteSRT(path string, cues []Cue) (int, error) {
	if err := os.WriteFile(path, []byte(Render(cues)), 0o644); err != nil {
		return 0, fmt.Errorf("write srt: %w", err)
	}
	return len(cues), nil
}
