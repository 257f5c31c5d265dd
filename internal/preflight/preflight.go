package preflight

import (
	"context"
	"strings"

	"shortforge/internal/config"
	"shortforge/internal/deps"
)

// MinFreeBytes is the free space below which a working directory fails its
// disk check. Source downloads and renders are written there.
const MinFreeBytes uint64 = 2 << 30

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the optional checks RunAll performs.
type Options struct {
	// ProbeLLM issues a live request to the LLM endpoint when a key is set.
	ProbeLLM bool
}

// RunAll executes the filesystem, credential, and binary checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results,
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDiskSpace("Work disk", cfg.Paths.WorkDir, MinFreeBytes),
	)
	if cfg.Paths.OutputDir != cfg.Paths.WorkDir {
		results = append(results, CheckDiskSpace("Output disk", cfg.Paths.OutputDir, MinFreeBytes))
	}

	results = append(results,
		CheckAPIKey("LLM API key", cfg.LLM.APIKey, "set llm.api_key or OPENROUTER_API_KEY"),
		CheckAPIKey("Stock footage API key", cfg.Stock.APIKey, "set stock.api_key or PEXELS_API_KEY"),
	)
	if opts.ProbeLLM && strings.TrimSpace(cfg.LLM.APIKey) != "" {
		results = append(results, CheckLLM(ctx, "LLM endpoint", cfg.LLM))
	}

	results = append(results, CheckTranscriptionLanguage("Transcription language", cfg.WhisperX.Language))
	results = append(results, BinaryResults(CheckSystemDeps(cfg))...)
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// BinaryResults converts dependency statuses into results. Optional
// dependencies that are missing still pass, with the detail noting it.
func BinaryResults(statuses []deps.Status) []Result {
	out := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
		if !status.Available {
			result.Detail = status.Detail
			if status.Optional {
				result.Passed = true
				result.Detail += " (optional)"
			}
		}
		out = append(out, result)
	}
	return out
}
