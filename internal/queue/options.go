package queue

import (
	"fmt"
	"strings"
	"unicode"

	"shortforge/internal/services"
)

// Bounds on clip options.
const (
	MinClipMinDuration = 5
	MaxClipMinDuration = 60
	MinClipMaxDuration = 15
	MaxClipMaxDuration = 120
	MinMaxClips        = 1
	MaxMaxClips        = 10
	MinMaxFootage      = 1
	MaxMaxFootage      = 10
)

// DefaultVoice is the TTS voice used when a generate job names none.
const DefaultVoice = "en-US-ChristopherNeural"

// ClipOptions tunes clip selection for one clip job.
type ClipOptions struct {
	MinDuration  float64 `json:"min_duration"`
	MaxDuration  float64 `json:"max_duration"`
	MaxClips     int     `json:"max_clips"`
	BurnCaptions bool    `json:"burn_captions"`
}

// DefaultClipOptions returns the stock clip options.
func DefaultClipOptions() ClipOptions {
	return ClipOptions{
		MinDuration:  15,
		MaxDuration:  60,
		MaxClips:     3,
		BurnCaptions: true,
	}
}

// Validate checks every bound and reports violations as services.ErrValidation.
func (o ClipOptions) Validate() error {
	if o.MinDuration < MinClipMinDuration || o.MinDuration > MaxClipMinDuration {
		return services.Wrap(services.ErrValidation, "clip", "validate options",
			fmt.Sprintf("min_duration %.1f outside [%d, %d]", o.MinDuration, MinClipMinDuration, MaxClipMinDuration), nil)
	}
	if o.MaxDuration < MinClipMaxDuration || o.MaxDuration > MaxClipMaxDuration {
		return services.Wrap(services.ErrValidation, "clip", "validate options",
			fmt.Sprintf("max_duration %.1f outside [%d, %d]", o.MaxDuration, MinClipMaxDuration, MaxClipMaxDuration), nil)
	}
	if o.MaxDuration < o.MinDuration {
		return services.Wrap(services.ErrValidation, "clip", "validate options",
			fmt.Sprintf("max_duration %.1f below min_duration %.1f", o.MaxDuration, o.MinDuration), nil)
	}
	if o.MaxClips < MinMaxClips || o.MaxClips > MaxMaxClips {
		return services.Wrap(services.ErrValidation, "clip", "validate options",
			fmt.Sprintf("max_clips %d outside [%d, %d]", o.MaxClips, MinMaxClips, MaxMaxClips), nil)
	}
	return nil
}

// GenerateOptions tunes one generate job.
type GenerateOptions struct {
	Voice      string `json:"voice"`
	MaxFootage int    `json:"max_footage"`
}

// DefaultGenerateOptions returns the stock generate options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{Voice: DefaultVoice, MaxFootage: 5}
}

// Validate checks the voice name and footage bound.
func (o GenerateOptions) Validate() error {
	voice := strings.TrimSpace(o.Voice)
	if voice == "" {
		return services.Wrap(services.ErrValidation, "generate", "validate options", "voice is required", nil)
	}
	if len(voice) > 64 || strings.IndexFunc(voice, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return services.Wrap(services.ErrValidation, "generate", "validate options",
			fmt.Sprintf("voice %q is not a valid voice name", voice), nil)
	}
	if o.MaxFootage < MinMaxFootage || o.MaxFootage > MaxMaxFootage {
		return services.Wrap(services.ErrValidation, "generate", "validate options",
			fmt.Sprintf("max_footage %d outside [%d, %d]", o.MaxFootage, MinMaxFootage, MaxMaxFootage), nil)
	}
	return nil
}
