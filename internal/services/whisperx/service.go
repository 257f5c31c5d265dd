package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"shortforge/internal/media"
	"shortforge/internal/services"
	"shortforge/internal/transcript"
)

// Service provides WhisperX transcription.
type Service struct {
	cfg Config
	run media.Runner
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.FFmpegBinary) == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg, run: execWithTorchEnv}
}

// WithCommandRunner sets a custom command runner.
func (s *Service) WithCommandRunner(runner media.Runner) {
	if runner != nil {
		s.run = runner
	}
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Transcribe returns the timed segments spoken in mediaPath within span.
// Times are relative to span.Start.
func (s *Service) Transcribe(ctx context.Context, mediaPath string, span transcript.Span) ([]transcript.Segment, error) {
	if strings.TrimSpace(mediaPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcription", "transcribe", "media path required", nil)
	}
	if s.cfg.ScratchDir != "" {
		if err := os.MkdirAll(s.cfg.ScratchDir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "transcription", "ensure scratch dir", s.cfg.ScratchDir, err)
		}
	}
	scratch, err := os.MkdirTemp(s.cfg.ScratchDir, "whisperx-")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcription", "create scratch dir", "", err)
	}
	defer os.RemoveAll(scratch)

	audioPath := filepath.Join(scratch, "audio.wav")
	if output, err := s.run(ctx, s.cfg.FFmpegBinary, ExtractArgs(mediaPath, span, audioPath)...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "extract audio", strings.TrimSpace(string(output)), err)
	}
	if output, err := s.run(ctx, UVXCommand, s.buildArgs(audioPath, scratch)...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "whisperx", lastLine(string(output)), err)
	}

	segments, err := LoadSegments(filepath.Join(scratch, "audio.json"))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "read whisperx output", "", err)
	}
	return segments, nil
}

// buildArgs returns the uvx arguments that run whisperx on source and write
// audio.json into outputDir.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := append(s.cfg.indexes(), "whisperx", source,
		"--model", s.cfg.Model,
		"--output_dir", outputDir,
	)
	args = append(args, tuning...)

	vad := s.cfg.VADMethod
	if vad == "" {
		vad = VADMethodSilero
	}
	args = append(args, "--vad_method", vad)
	if vad == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if lang := strings.ToLower(strings.TrimSpace(s.cfg.Language)); lang != "" {
		args = append(args, "--language", lang)
	}
	return append(args, s.cfg.device()...)
}

type whisperXWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

type whisperXSegment struct {
	Text  string         `json:"text"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	Words []whisperXWord `json:"words"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file. Words WhisperX could
// not align (no timing) are dropped; transcript.Words spreads untimed
// segments evenly instead.
func LoadSegments(jsonPath string) ([]transcript.Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	segments := make([]transcript.Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		out := transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" || w.Start == nil || w.End == nil {
				continue
			}
			out.Words = append(out.Words, transcript.Word{Start: *w.Start, End: *w.End, Text: text})
		}
		segments = append(segments, out)
	}
	return segments, nil
}

// execWithTorchEnv runs the command with legacy torch checkpoint loading,
// which WhisperX and pyannote still require.
func execWithTorchEnv(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	return cmd.CombinedOutput()
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
