// Package ytdlp downloads source videos with the yt-dlp CLI.
package ytdlp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"shortforge/internal/logging"
	"shortforge/internal/media"
	"shortforge/internal/services"
)

const (
	defaultBinary   = "yt-dlp"
	defaultFormat   = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	defaultAttempts = 3
	defaultMinWait  = 4 * time.Second
	defaultMaxWait  = 10 * time.Second
)

// Config configures the downloader.
type Config struct {
	Binary   string
	Format   string
	Attempts int
	MinWait  time.Duration
	MaxWait  time.Duration
}

// Downloader fetches a URL into a directory, retrying failed attempts with
// exponential waits.
type Downloader struct {
	cfg    Config
	run    media.Runner
	sleep  func(context.Context, time.Duration) error
	logger *slog.Logger
}

// New builds a downloader.
func New(cfg Config, logger *slog.Logger) *Downloader {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = defaultBinary
	}
	if strings.TrimSpace(cfg.Format) == "" {
		cfg.Format = defaultFormat
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.MinWait <= 0 {
		cfg.MinWait = defaultMinWait
	}
	if cfg.MaxWait < cfg.MinWait {
		cfg.MaxWait = max(defaultMaxWait, cfg.MinWait)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{
		cfg:    cfg,
		run:    media.ExecRunner,
		sleep:  sleepContext,
		logger: logging.NewComponentLogger(logger, "ytdlp"),
	}
}

// WithRunner overrides command execution.
func (d *Downloader) WithRunner(run media.Runner) *Downloader {
	if run != nil {
		d.run = run
	}
	return d
}

// WithSleep overrides retry waits.
func (d *Downloader) WithSleep(sleep func(context.Context, time.Duration) error) *Downloader {
	if sleep != nil {
		d.sleep = sleep
	}
	return d
}

// Wait returns the delay before retry attempt+1: min doubled per attempt,
// capped at max.
func (d *Downloader) Wait(attempt int) time.Duration {
	wait := d.cfg.MinWait
	for i := 1; i < attempt && wait < d.cfg.MaxWait; i++ {
		wait *= 2
	}
	return min(wait, d.cfg.MaxWait)
}

// Download saves url into destDir under a unique name and returns the local
// path.
func (d *Downloader) Download(ctx context.Context, url, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "download", "ensure dir", destDir, err)
	}
	var lastErr error
	for attempt := 1; attempt <= d.cfg.Attempts; attempt++ {
		path, err := d.attempt(ctx, url, destDir)
		if err == nil {
			d.logger.Info("download complete",
				logging.String("path", path),
				logging.Int("attempt", attempt),
				logging.String(logging.FieldEventType, "download_complete"),
			)
			return path, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == d.cfg.Attempts {
			break
		}
		wait := d.Wait(attempt)
		d.logger.Warn("download attempt failed; retrying",
			logging.Int("attempt", attempt),
			logging.Duration("wait", wait),
			logging.Error(err),
			logging.String(logging.FieldEventType, "download_retry"),
			logging.String(logging.FieldErrorHint, "check the URL and network access"),
		)
		if err := d.sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "download", "yt-dlp",
		fmt.Sprintf("failed after %d attempts", d.cfg.Attempts), lastErr)
}

// Args builds the yt-dlp arguments for one attempt.
func (d *Downloader) Args(url, template string) []string {
	return []string{
		"--no-playlist",
		"--no-progress",
		"--format", d.cfg.Format,
		"--merge-output-format", "mp4",
		"--output", template,
		"--print", "after_move:filepath",
		url,
	}
}

func (d *Downloader) attempt(ctx context.Context, url, destDir string) (string, error) {
	stem := uuid.NewString()
	template := filepath.Join(destDir, stem+".%(ext)s")
	output, err := d.run(ctx, d.cfg.Binary, d.Args(url, template)...)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, lastLine(string(output)))
	}
	if path := printedPath(string(output), destDir); path != "" {
		return path, nil
	}
	matches, _ := filepath.Glob(filepath.Join(destDir, stem+".*"))
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && info.Size() > 0 && !strings.HasSuffix(match, ".part") {
			return match, nil
		}
	}
	return "", fmt.Errorf("yt-dlp reported success but produced no file")
}

// printedPath returns the last output line naming an existing file in dir.
func printedPath(output, dir string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || filepath.Dir(line) != filepath.Clean(dir) {
			continue
		}
		if info, err := os.Stat(line); err == nil && !info.IsDir() {
			return line
		}
	}
	return ""
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
