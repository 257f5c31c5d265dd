package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"shortforge/internal/config"
)

// WhisperXCommand launches WhisperX through uv's tool runner.
const WhisperXCommand = "uvx"

// Requirement is one external command a pipeline runs.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement after PATH lookup. Command holds the resolved
// path when Available.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the commands the configured pipelines execute. The face
// detector is included only when one is configured and never blocks jobs.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	reqs := []Requirement{
		{"FFmpeg", cfg.Encoding.FFmpegBinary, "Renders clips and assembles generated videos", false},
		{"FFprobe", cfg.Encoding.FFprobeBinary, "Reads duration, dimensions and audio presence", false},
		{"yt-dlp", cfg.Download.Binary, "Downloads source videos for clip jobs", false},
		{"edge-tts", cfg.TTS.Binary, "Synthesizes narration for generate jobs", false},
		{"uvx", WhisperXCommand, "Runs WhisperX transcription", false},
	}
	if face := strings.TrimSpace(cfg.Face.Command); face != "" {
		reqs = append(reqs, Requirement{"Face detector", face, "Locates faces for adaptive framing", true})
	}
	return reqs
}

// Check resolves req on PATH.
func Check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Command, status.Available = path, true
	return status
}

func CheckBinaries(reqs []Requirement) []Status {
	statuses := make([]Status, len(reqs))
	for i, req := range reqs {
		statuses[i] = Check(req)
	}
	return statuses
}

// MissingRequired names the unavailable requirements that are not optional.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
