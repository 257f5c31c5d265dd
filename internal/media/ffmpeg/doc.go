// Package ffmpeg renders shortforge outputs with the ffmpeg CLI.
//
// Tool builds argument lists for three jobs: extracting single frames for
// face tracking, encoding a vertical clip along an adaptive crop path with
// optional burned-in captions, and assembling stock footage over narration.
// Argument builders are exported so tests can assert on them without running
// ffmpeg; execution goes through an injectable media.Runner.
package ffmpeg
