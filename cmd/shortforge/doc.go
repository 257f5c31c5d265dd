// Package main hosts the shortforge CLI entrypoint and command graph.
//
// The Cobra-based command tree submits clip and generate jobs to the daemon's
// HTTP API, renders job, status, and health views, runs the daemon in the
// foreground, and scaffolds configuration. Read-only job views fall back to
// the local job database when no daemon answers.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
