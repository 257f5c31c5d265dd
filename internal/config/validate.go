package config

import (
	"errors"
	"fmt"
	"strings"

	"shortforge/internal/language"
)

// Validate ensures the configuration is usable. API keys are optional here;
// health checks report missing credentials for the pipelines that need them.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateClip(); err != nil {
		return err
	}
	if err := c.validateGenerate(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateStock(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateWhisperX(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateClip() error {
	if c.Clip.MinDuration < 5 || c.Clip.MinDuration > 60 {
		return errors.New("clip.min_duration must be between 5 and 60 seconds")
	}
	if c.Clip.MaxDuration < 15 || c.Clip.MaxDuration > 120 {
		return errors.New("clip.max_duration must be between 15 and 120 seconds")
	}
	if c.Clip.MaxDuration < c.Clip.MinDuration {
		return errors.New("clip.max_duration must be >= clip.min_duration")
	}
	if c.Clip.MaxClips < 1 || c.Clip.MaxClips > 10 {
		return errors.New("clip.max_clips must be between 1 and 10")
	}
	if c.Clip.WordsPerCue <= 0 {
		return errors.New("clip.words_per_cue must be positive")
	}
	return nil
}

func (c *Config) validateGenerate() error {
	if c.Generate.MaxFootage < 1 || c.Generate.MaxFootage > 10 {
		return errors.New("generate.max_footage must be between 1 and 10")
	}
	if err := ensurePositiveMap(map[string]int{
		"generate.width":  c.Generate.Width,
		"generate.height": c.Generate.Height,
		"generate.fps":    c.Generate.FPS,
	}); err != nil {
		return err
	}
	if c.Generate.Width%2 != 0 || c.Generate.Height%2 != 0 {
		return errors.New("generate.width and generate.height must be even")
	}
	if c.Generate.SegmentSeconds <= 0 {
		return errors.New("generate.segment_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if err := ensurePositiveMap(map[string]int{
		"download.attempts":         c.Download.Attempts,
		"download.min_wait_seconds": c.Download.MinWaitSeconds,
		"download.max_wait_seconds": c.Download.MaxWaitSeconds,
	}); err != nil {
		return err
	}
	if c.Download.MaxWaitSeconds < c.Download.MinWaitSeconds {
		return errors.New("download.max_wait_seconds must be >= download.min_wait_seconds")
	}
	return nil
}

func (c *Config) validateStock() error {
	if c.Stock.PerPage < 1 || c.Stock.PerPage > 80 {
		return errors.New("stock.per_page must be between 1 and 80")
	}
	switch c.Stock.Orientation {
	case "portrait", "landscape", "square":
	default:
		return fmt.Errorf("stock.orientation %q must be portrait, landscape, or square", c.Stock.Orientation)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.CRF < 0 || c.Encoding.CRF > 51 {
		return errors.New("encoding.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateWhisperX() error {
	switch c.WhisperX.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("whisperx.vad_method %q must be silero or pyannote", c.WhisperX.VADMethod)
	}
	if language.ToISO2(c.WhisperX.Language) == "" {
		return fmt.Errorf("whisperx.language %q is not a recognized language", c.WhisperX.Language)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic %q must be an http(s) URL", topic)
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
