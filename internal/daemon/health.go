package daemon

import (
	"context"

	"shortforge/internal/api"
	"shortforge/internal/preflight"
)

// Health runs the readiness checks reported by GET /api/health: database
// ping, filesystem and disk checks, credentials, binaries, and per-pipeline
// readiness.
func (d *Daemon) Health(ctx context.Context) api.HealthReport {
	checks := []api.HealthCheck{d.databaseCheck(ctx)}
	for _, result := range preflight.RunAll(ctx, d.cfg, preflight.Options{}) {
		checks = append(checks, api.HealthCheck{Name: result.Name, Ready: result.Passed, Detail: result.Detail})
	}
	for _, h := range api.StageHealthSlice(d.workflow.Status(ctx).StageHealth) {
		checks = append(checks, api.HealthCheck{Name: "Pipeline " + h.Name, Ready: h.Ready, Detail: h.Detail})
	}

	report := api.HealthReport{Healthy: true, Checks: checks}
	for _, check := range checks {
		if !check.Ready {
			report.Healthy = false
			break
		}
	}
	return report
}

// databaseCheck fails when the file is missing, unreadable or fails
// SQLite's integrity check.
func (d *Daemon) databaseCheck(ctx context.Context) api.HealthCheck {
	const name = "Job database"
	health, err := d.store.CheckHealth(ctx)
	switch {
	case err != nil:
		return api.HealthCheck{Name: name, Detail: err.Error()}
	case !health.DatabaseExists:
		return api.HealthCheck{Name: name, Detail: health.Summary()}
	case !health.IntegrityCheck:
		return api.HealthCheck{Name: name, Detail: "integrity check failed: " + health.Summary()}
	}
	return api.HealthCheck{Name: name, Ready: true, Detail: health.Summary()}
}
