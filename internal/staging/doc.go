// Package staging removes job workspaces that outlived their job.
//
// Each pipeline run works in paths.work_dir/<job id>. A daemon crash leaves
// that directory behind, so the workflow manager sweeps the work directory at
// startup. Only directories named by a job id are candidates; anything else
// under the work directory is left alone.
package staging
