// Package services defines shared utilities consumed by the pipeline stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every stage failure
//     carries its stage and operation into the persisted job error.
//
// Use these helpers when wiring new stage logic so failures read the same way
// across the clip and generate pipelines.
package services
