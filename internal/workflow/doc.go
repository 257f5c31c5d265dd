// Package workflow runs queued jobs through their pipeline handlers.
//
// The Manager keeps an in-memory FIFO of job ids and drains it with a single
// worker goroutine. For each job it moves the record into its first active
// status, hands it to the stage.Handler registered for the job's kind, and
// records the outcome as completed or failed. Handler panics become failures
// and never stop the loop.
//
// On Start the manager reconciles the store: pending jobs are re-enqueued in
// creation order and jobs left mid-run by a crash are failed, since the state
// machine never moves a job backwards.
//
// Every job also gets a JSON log file under paths.log_dir/jobs so a single
// run can be inspected without filtering the daemon log.
package workflow
