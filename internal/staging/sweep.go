package staging

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shortforge/internal/logging"
)

// Result contains the outcome of a sweep.
type Result struct {
	Removed   []string
	Reclaimed int64
	Errors    []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// SweepWorkspaces removes job workspace directories under workDir whose job id
// is not in keep.
func SweepWorkspaces(ctx context.Context, workDir string, keep map[string]struct{}, logger *slog.Logger) Result {
	result := Result{}
	if logger == nil {
		logger = logging.NewNop()
	}

	workDir = strings.TrimSpace(workDir)
	if workDir == "" {
		return result
	}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: workDir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() || !IsWorkspaceName(entry.Name()) {
			continue
		}
		if _, active := keep[entry.Name()]; active {
			continue
		}
		dirPath := filepath.Join(workDir, entry.Name())
		size := dirSize(dirPath)
		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logger.Warn("failed to remove orphaned workspace",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldEventType, "workspace_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check paths.work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		result.Reclaimed += size
		logger.Info("removed orphaned workspace",
			logging.String("path", dirPath),
			logging.Int64("bytes", size),
			logging.String(logging.FieldEventType, "workspace_cleanup"),
		)
	}
	return result
}

// IsWorkspaceName reports whether name is a job id.
func IsWorkspaceName(name string) bool {
	if len(name) != 36 {
		return false
	}
	_, err := uuid.Parse(name)
	return err == nil
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, infoErr := d.Info(); infoErr == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}
