package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shortforge/internal/services"
)

// Create inserts a new pending job and assigns its id. Options are validated
// before anything is written; a nil option set falls back to the defaults.
func (s *Store) Create(ctx context.Context, job *Job) (string, error) {
	if job == nil {
		return "", services.Wrap(services.ErrValidation, "store", "create", "job is nil", nil)
	}
	kind, err := ParseKind(string(job.Kind))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "store", "create", "", err)
	}
	job.Kind = kind
	input := strings.TrimSpace(job.Input)
	if input == "" {
		return "", services.Wrap(services.ErrValidation, "store", "create", "input is required", nil)
	}
	switch job.Kind {
	case KindClip:
		if job.ClipOptions != nil {
			if err := job.ClipOptions.Validate(); err != nil {
				return "", err
			}
		}
	case KindGenerate:
		if job.GenerateOptions != nil {
			if err := job.GenerateOptions.Validate(); err != nil {
				return "", err
			}
		}
	}
	options, err := encodeOptions(job)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (id, kind, input, status, progress, logs_json, options_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, '[]', ?, ?, ?)`,
		id,
		job.Kind,
		input,
		StatusPending,
		options,
		formatTime(now),
		formatTime(now),
	); err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}

	job.ID = id
	job.Input = input
	job.Status = StatusPending
	job.Progress = 0
	job.CreatedAt = now
	job.UpdatedAt = now
	job.CompletedAt = nil
	job.OutputRef = ""
	job.Error = ""
	job.Score = nil
	job.Logs = nil
	if err := decodeOptions(job, options); err != nil {
		return "", err
	}
	return id, nil
}

// Get fetches a job by id. A missing job yields nil, nil.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

// Update applies a partial change to a non-terminal job. Progress never moves
// backwards and status changes must be legal for the job's kind. An unknown,
// terminal, or illegally-transitioning job is left untouched and reported as
// applied=false.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}
	where := []string{"id = ?", terminalGuard}
	var whereArgs []any
	whereArgs = append(whereArgs, id)

	if patch.Status != nil {
		target := *patch.Status
		if target.IsTerminal() {
			return false, services.Wrap(services.ErrValidation, "store", "update",
				fmt.Sprintf("status %s must be set through Complete or Fail", target), nil)
		}
		if _, ok := statusSet[target]; !ok {
			return false, services.Wrap(services.ErrValidation, "store", "update",
				fmt.Sprintf("unknown status %q", target), nil)
		}
		from := predecessors(target)
		if len(from) == 0 {
			return false, nil
		}
		sets = append(sets, "status = ?")
		args = append(args, target)
		where = append(where, "status IN ("+makePlaceholders(len(from))+")")
		for _, status := range from {
			whereArgs = append(whereArgs, status)
		}
		var kinds []any
		for _, kind := range []Kind{KindClip, KindGenerate} {
			if kind.Uses(target) {
				kinds = append(kinds, kind)
			}
		}
		where = append(where, "kind IN ("+makePlaceholders(len(kinds))+")")
		whereArgs = append(whereArgs, kinds...)
	}
	if patch.Progress != nil {
		sets = append(sets, "progress = MAX(progress, ?)")
		args = append(args, clampProgress(*patch.Progress))
	}

	query := `UPDATE jobs SET ` + strings.Join(sets, ", ") + ` WHERE ` + strings.Join(where, " AND ")
	res, err := s.execWithRetry(ctx, query, append(args, whereArgs...)...)
	if err != nil {
		return false, fmt.Errorf("update job %s: %w", id, err)
	}
	return rowsApplied(res)
}

// Complete marks a processing job as completed with its output and optional
// score. Progress becomes 100 and any error is cleared.
func (s *Store) Complete(ctx context.Context, id, outputRef string, score *float64) (bool, error) {
	outputRef = strings.TrimSpace(outputRef)
	if outputRef == "" {
		return false, services.Wrap(services.ErrValidation, "store", "complete", "output reference is required", nil)
	}
	var scoreArg any
	if score != nil {
		clamped := clampScore(*score)
		scoreArg = nullableFloat(&clamped)
	}
	from := predecessors(StatusCompleted)
	now := formatTime(time.Now())
	args := []any{StatusCompleted, outputRef, scoreArg, now, now, id}
	for _, status := range from {
		args = append(args, status)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, progress = 100, output_ref = ?, error_message = NULL, score = ?,
             completed_at = ?, updated_at = ?
         WHERE id = ? AND status IN (`+makePlaceholders(len(from))+`)`,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("complete job %s: %w", id, err)
	}
	return rowsApplied(res)
}

// Fail marks a non-terminal job as failed. Progress is frozen and no output
// reference is kept.
func (s *Store) Fail(ctx context.Context, id, message string) (bool, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "job failed"
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = ?, output_ref = NULL, score = NULL, updated_at = ?
         WHERE id = ? AND `+terminalGuard,
		StatusFailed,
		message,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("fail job %s: %w", id, err)
	}
	return rowsApplied(res)
}

// AppendLog adds one line to a non-terminal job's log list.
func (s *Store) AppendLog(ctx context.Context, id, line string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET logs_json = json_insert(logs_json, '$[#]', ?), updated_at = ?
         WHERE id = ? AND `+terminalGuard,
		line,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("append log for job %s: %w", id, err)
	}
	return rowsApplied(res)
}

// List returns jobs newest first. A non-positive limit returns every job.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*Job, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return s.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY seq DESC LIMIT ? OFFSET ?`, limit, offset)
}

// Unfinished returns every non-terminal job in creation order.
func (s *Store) Unfinished(ctx context.Context) ([]*Job, error) {
	return s.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE `+terminalGuard+` ORDER BY seq ASC`)
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]*Job, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func rowsApplied(res sql.Result) (bool, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
