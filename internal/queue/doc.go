// Package queue persists shortforge jobs in SQLite and owns the job state
// machine.
//
// The Store manages the database connection, goose migrations, stats queries,
// and guarded updates: every write carries a `status NOT IN ('completed',
// 'failed')` predicate so terminal rows are never touched again, and progress
// only moves forward. CanTransition is the single authority on which status
// moves are legal; the store derives its SQL guards from it.
//
// Treat this package as the single source of truth for job semantics; when
// you add a status or column, add a goose migration under migrations/.
package queue
