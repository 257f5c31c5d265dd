// Package tts synthesizes narration with the edge-tts CLI.
package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"shortforge/internal/media"
	"shortforge/internal/services"
)

// DefaultVoice is the narration voice used when none is configured.
const DefaultVoice = "en-US-ChristopherNeural"

// Synthesizer runs edge-tts.
type Synthesizer struct {
	Binary string
	Run    media.Runner
}

// New builds a synthesizer for binary.
func New(binary string) *Synthesizer {
	if strings.TrimSpace(binary) == "" {
		binary = "edge-tts"
	}
	return &Synthesizer{Binary: binary, Run: media.ExecRunner}
}

// Args builds the edge-tts arguments reading the script from textFile.
func Args(voice, textFile, output string) []string {
	return []string{"--voice", voice, "--file", textFile, "--write-media", output}
}

// Synthesize speaks text with voice into output (an mp3). The script is
// passed through a sidecar text file so long scripts never hit argv limits.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice, output string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, "audio", "synthesize", "empty narration text", nil)
	}
	if strings.TrimSpace(voice) == "" {
		voice = DefaultVoice
	}
	textFile := strings.TrimSuffix(output, filepath.Ext(output)) + ".txt"
	if err := os.WriteFile(textFile, []byte(text), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "audio", "write narration text", "", err)
	}
	defer os.Remove(textFile)

	run := s.Run
	if run == nil {
		run = media.ExecRunner
	}
	out, err := run(ctx, s.Binary, Args(voice, textFile, output)...)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "audio", "edge-tts", strings.TrimSpace(string(out)), err)
	}
	info, err := os.Stat(output)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "audio", "edge-tts", "no audio written", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "audio", "edge-tts", "no audio written", errors.New("empty output"))
	}
	return nil
}
