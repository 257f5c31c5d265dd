package transcript_test

import (
	"math"
	"testing"

	"shortforge/internal/transcript"
)

func TestFullTextSkipsBlankSegments(t *testing.T) {
	got := transcript.FullText([]transcript.Segment{
		{Text: " Hello there "},
		{Text: "   "},
		{Text: "friend"},
	})
	if got != "Hello there friend" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestWordsSpreadsUntimedSegments(t *testing.T) {
	words := transcript.Words([]transcript.Segment{
		{Start: 0, End: 2, Text: "one two"},
		{Start: 2, End: 3, Text: "ignored", Words: []transcript.Word{{Start: 2, End: 2.5, Text: "three"}}},
	})
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %+v", words)
	}
	if words[1].Text != "two" || math.Abs(words[1].Start-1) > 1e-9 {
		t.Fatalf("unexpected spread word: %+v", words[1])
	}
	if words[2].Text != "three" {
		t.Fatalf("expected timed word to be kept, got %+v", words[2])
	}
}

func TestWindowShiftsAndClips(t *testing.T) {
	words := []transcript.Word{
		{Start: 1, End: 2, Text: "before"},
		{Start: 9.5, End: 10.5, Text: "edge"},
		{Start: 12, End: 13, Text: "inside"},
		{Start: 30, End: 31, Text: "after"},
	}
	got := transcript.Window(words, 10, 20)
	if len(got) != 2 {
		t.Fatalf("expected 2 words, got %+v", got)
	}
	if got[0].Text != "edge" || got[0].Start != 0 || got[0].End != 0.5 {
		t.Fatalf("unexpected clipped word: %+v", got[0])
	}
	if got[1].Start != 2 || got[1].End != 3 {
		t.Fatalf("unexpected shifted word: %+v", got[1])
	}
}
