package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"shortforge/internal/config"
)

// Store persists jobs in a single SQLite file.
type Store struct {
	db       *sql.DB
	path     string
	migrator *goose.Provider
}

// Writes that still hit SQLITE_BUSY after busy_timeout are retried a few
// times with doubling waits.
const (
	sqliteBusyCode = 5
	busyAttempts   = 5
	busyFirstWait  = 10 * time.Millisecond
	busyMaxWait    = 200 * time.Millisecond
)

var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func isSQLiteBusy(err error) bool {
	var coded interface{ Code() int }
	switch {
	case err == nil:
		return false
	case errors.As(err, &coded):
		return coded.Code()&0xff == sqliteBusyCode
	}
	return strings.Contains(err.Error(), "database is locked")
}

func busyWait(attempt int) time.Duration {
	return min(busyFirstWait<<attempt, busyMaxWait)
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	for attempt := 0; ; attempt++ {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err == nil || !isSQLiteBusy(err) || attempt == busyAttempts-1 {
			return res, err
		}
		timer := time.NewTimer(busyWait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// dsn builds a modernc sqlite DSN that applies connPragmas to every new
// connection.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Open creates the data directories, opens the job database and migrates it
// to the latest schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serializes writers; WAL keeps readers unblocked.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}
	migrator, err := newMigrator(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(context.Background(), migrator); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path, migrator: migrator}, nil
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Ping checks that the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("job store unavailable")
	}
	if err := s.db.PingContext(ensureContext(ctx)); err != nil {
		return fmt.Errorf("ping job database: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
