package queue

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// DatabaseHealth is the result of CheckHealth. Error holds the first
// failure message once a check has failed.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int64
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}

// Summary renders the health for status output, e.g.
// "/data/jobs.db (schema 2, 14 jobs)".
func (h DatabaseHealth) Summary() string {
	if !h.DatabaseExists {
		return h.DBPath + " (missing)"
	}
	return fmt.Sprintf("%s (schema %d, %d jobs)", h.DBPath, h.SchemaVersion, h.TotalJobs)
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("job stats: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// CheckHealth stats the database file, pings it, reads the schema version
// and job count, then runs SQLite's integrity check. Each step runs only if
// the previous one passed, within a two second budget.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}
	if s.path == "" {
		return health, errors.New("job database path is unknown")
	}
	switch info, err := os.Stat(s.path); {
	case errors.Is(err, fs.ErrNotExist):
		return health, nil
	case err != nil:
		return health, fmt.Errorf("stat job database: %w", err)
	case info.IsDir():
		return health, fmt.Errorf("job database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	ctx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	var integrity string
	steps := []struct {
		name string
		run  func() error
	}{
		{"ping", func() error {
			err := s.Ping(ctx)
			health.DatabaseReadable = err == nil
			return err
		}},
		{"schema version", func() (err error) {
			health.SchemaVersion, err = s.SchemaVersion(ctx)
			return err
		}},
		{"count jobs", func() error {
			return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&health.TotalJobs)
		}},
		{"integrity check", func() error {
			return s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&integrity)
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("%s: %w", step.name, err)
		}
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")
	return health, nil
}
