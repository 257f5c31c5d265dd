package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shortforge/internal/config"
	"shortforge/internal/logging"
	"shortforge/internal/queue"
	"shortforge/internal/textutil"
)

// JobLogDir is the directory under paths.log_dir that holds per-job logs.
const JobLogDir = "jobs"

// JobLogger manages dedicated log files for individual jobs.
type JobLogger struct {
	baseDir string
	level   string
}

// NewJobLogger creates a job logger rooted at paths.log_dir/jobs.
func NewJobLogger(cfg *config.Config) *JobLogger {
	logger := &JobLogger{level: "info"}
	if cfg == nil {
		return logger
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		logger.baseDir = filepath.Join(dir, JobLogDir)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" {
		logger.level = level
	}
	return logger
}

// Dir returns the job log directory, empty when logging to files is off.
func (j *JobLogger) Dir() string {
	if j == nil {
		return ""
	}
	return j.baseDir
}

// Path returns the log file path for a job.
func (j *JobLogger) Path(job *queue.Job) (string, error) {
	if job == nil {
		return "", errors.New("job is nil")
	}
	if j == nil || strings.TrimSpace(j.baseDir) == "" {
		return "", errors.New("job log directory not configured")
	}
	return filepath.Join(j.baseDir, j.filename(job)), nil
}

// Open creates the job's log file and returns a JSON handler writing to it.
func (j *JobLogger) Open(job *queue.Job) (slog.Handler, func(), error) {
	path, err := j.Path(job)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure job log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open job log: %w", err)
	}
	return logging.NewJSONWriterHandler(file, j.level), func() { _ = file.Close() }, nil
}

func (j *JobLogger) filename(job *queue.Job) string {
	created := job.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return fmt.Sprintf("%s-%s-%s.log",
		created.UTC().Format("20060102T150405"),
		textutil.SanitizeToken(string(job.Kind)),
		textutil.SanitizeToken(job.ShortID()),
	)
}
