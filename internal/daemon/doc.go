// Package daemon coordinates the long-running shortforge process.
//
// It wires configuration, job storage, the workflow manager, and the HTTP
// API into a single lifecycle with flock-based locking to prevent multiple
// instances. The daemon reports dependency and readiness summaries for the
// status and health endpoints.
//
// Keep orchestration logic here: pipeline steps live in internal/pipeline and
// request validation in internal/api, while the daemon focuses on startup,
// shutdown, and HTTP transport.
package daemon
