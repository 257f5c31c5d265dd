package whisperx

import (
	"strconv"

	"shortforge/internal/transcript"
)

// ExtractArgs builds the ffmpeg arguments that write a mono 16kHz WAV of the
// first audio stream, limited to span when it has a duration.
func ExtractArgs(source string, span transcript.Span, dest string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if span.Start > 0 {
		args = append(args, "-ss", strconv.FormatFloat(span.Start, 'f', 3, 64))
	}
	if span.Duration > 0 {
		args = append(args, "-t", strconv.FormatFloat(span.Duration, 'f', 3, 64))
	}
	return append(args,
		"-i", source,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	)
}
