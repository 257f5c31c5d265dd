// Package pipeline implements the clip and generate orchestrators as
// stage.Handler values.
//
// Each orchestrator depends only on the narrow capability interfaces in
// ports.go, so tests drive the whole flow with fakes. Build wires the real
// adapters (yt-dlp, ffprobe, WhisperX, ffmpeg, the face detector, the LLM,
// Pexels, edge-tts, and the virality scorer) from configuration.
//
// Every run owns a Workspace under paths.work_dir/<job id>; it is removed on
// every exit path, and outputs registered with it are removed unless the run
// commits.
package pipeline
