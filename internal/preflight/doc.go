// Package preflight provides readiness checks for the filesystem paths,
// external binaries, and API credentials shortforge depends on.
//
// These checks run in two contexts:
//   - The daemon folds them into GET /api/health alongside the database ping
//     and per-pipeline readiness.
//   - The CLI "shortforge health" command renders the same report, optionally
//     probing the LLM endpoint.
package preflight
