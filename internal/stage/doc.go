// Package stage defines the contract between the workflow manager and the
// pipeline handlers.
//
// A Handler runs one job kind end to end and returns an Outcome. While it
// runs it reports status changes, progress checkpoints, and log lines
// through a Reporter, which validates every status move against
// queue.CanTransitionKind before touching the store.
package stage
