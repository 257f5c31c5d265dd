package captions_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shortforge/internal/captions"
	"shortforge/internal/transcript"
)

func TestFormatTimestamp(t *testing.T) {
	tests := map[float64]string{
		0:       "00:00:00,000",
		1.5:     "00:00:01,500",
		61.0456: "00:01:01,046",
		3725.2:  "01:02:05,200",
		-3:      "00:00:00,000",
	}
	for in, want := range tests {
		if got := captions.FormatTimestamp(in); got != want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildCuesGroupsWords(t *testing.T) {
	words := []transcript.Word{
		{Start: 0, End: 0.4, Text: "one"},
		{Start: 0.4, End: 0.8, Text: "two"},
		{Start: 0.8, End: 1.2, Text: "three"},
		{Start: 1.2, End: 1.6, Text: "four"},
		{Start: 1.6, End: 2.0, Text: "five"},
		{Start: 9, End: 9.1, Text: "late"},
	}
	cues := captions.BuildCues(words, 4)
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %+v", cues)
	}
	if cues[0].Text != "one two three four" || cues[0].Start != 0 || cues[0].End != 1.6 {
		t.Fatalf("unexpected first cue: %+v", cues[0])
	}
	if cues[1].Text != "five" {
		t.Fatalf("expected sparse word split into its own cue, got %+v", cues[1])
	}
	if cues[2].End-cues[2].Start < 0.3-1e-9 {
		t.Fatalf("expected short cue stretched, got %+v", cues[2])
	}
	for i := 1; i < len(cues); i++ {
		if cues[i-1].End > cues[i].Start {
			t.Fatalf("cues overlap: %+v %+v", cues[i-1], cues[i])
		}
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.srt")
	n, err := captions.WriteSRT(path, []captions.Cue{{Start: 0, End: 1, Text: "hello"}, {Start: 1, End: 2.5, Text: "world"}})
	if err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cues, got %d", n)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nhello\n\n2\n00:00:01,000 --> 00:00:02,500\nworld\n\n"
	if string(data) != want {
		t.Fatalf("unexpected srt:\n%s", data)
	}
	if !strings.HasSuffix(string(data), "\n\n") {
		t.Fatal("expected trailing blank line")
	}
}
