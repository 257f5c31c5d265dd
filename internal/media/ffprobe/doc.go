// Package ffprobe runs ffprobe and summarizes its JSON report.
//
// Inspect returns the decoded Result; Prober adapts it to media.Info for the
// pipelines and the virality scorer.
package ffprobe
