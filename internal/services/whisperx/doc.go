// Package whisperx transcribes media with WhisperX run through uvx.
//
// Service implements transcript.Transcriber: it extracts a mono 16kHz WAV
// (optionally a time span) with ffmpeg into a scratch directory, runs
// WhisperX with JSON output, and converts the segments and word timings into
// transcript.Segment values. Scratch files are removed after every call.
package whisperx
