package main

import (
	"context"

	"shortforge/internal/api"
	"shortforge/internal/apiclient"
	"shortforge/internal/config"
	"shortforge/internal/queue"
)

// jobReader serves the read-only job views regardless of whether the daemon
// or the local database backs them.
type jobReader interface {
	Job(ctx context.Context, id string) (api.Job, error)
	Jobs(ctx context.Context, limit, offset int) (api.JobListResponse, error)
	Offline() bool
}

// --- API adapter ---

type apiJobReader struct {
	client *apiclient.Client
}

func (r *apiJobReader) Job(ctx context.Context, id string) (api.Job, error) {
	return r.client.Job(ctx, id)
}

func (r *apiJobReader) Jobs(ctx context.Context, limit, offset int) (api.JobListResponse, error) {
	return r.client.Jobs(ctx, limit, offset)
}

func (r *apiJobReader) Offline() bool { return false }

// --- Store adapter ---

type storeJobReader struct {
	service *api.Service
}

func newStoreJobReader(store *queue.Store, cfg *config.Config) *storeJobReader {
	return &storeJobReader{service: api.NewService(store, nil, cfg)}
}

func (r *storeJobReader) Job(ctx context.Context, id string) (api.Job, error) {
	job, err := r.service.GetJob(ctx, id)
	if err != nil {
		return api.Job{}, err
	}
	return api.FromJob(job), nil
}

func (r *storeJobReader) Jobs(ctx context.Context, limit, offset int) (api.JobListResponse, error) {
	jobs, err := r.service.ListJobs(ctx, limit, offset)
	if err != nil {
		return api.JobListResponse{}, err
	}
	return api.JobListResponse{Jobs: api.FromJobs(jobs), Limit: api.ClampLimit(limit), Offset: offset}, nil
}

func (r *storeJobReader) Offline() bool { return true }
