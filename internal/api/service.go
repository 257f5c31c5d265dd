package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"shortforge/internal/config"
	"shortforge/internal/queue"
	"shortforge/internal/services"
)

// Paging and topic bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	MinTopicRunes    = 3
	MaxTopicRunes    = 200
)

// JobStore abstracts the persistence interactions the service needs.
type JobStore interface {
	Create(ctx context.Context, job *queue.Job) (string, error)
	Get(ctx context.Context, id string) (*queue.Job, error)
	List(ctx context.Context, limit, offset int) ([]*queue.Job, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
}

// Enqueuer hands new job ids to the worker.
type Enqueuer interface {
	Enqueue(id string)
}

// Service validates, creates, and reads jobs.
type Service struct {
	store           JobStore
	queue           Enqueuer
	clipDefaults    queue.ClipOptions
	generateDefault queue.GenerateOptions
}

// NewService constructs a Service. A nil cfg uses the stock option defaults.
func NewService(store JobStore, q Enqueuer, cfg *config.Config) *Service {
	svc := &Service{
		store:           store,
		queue:           q,
		clipDefaults:    queue.DefaultClipOptions(),
		generateDefault: queue.DefaultGenerateOptions(),
	}
	if cfg != nil {
		svc.clipDefaults = queue.ClipOptions{
			MinDuration:  cfg.Clip.MinDuration,
			MaxDuration:  cfg.Clip.MaxDuration,
			MaxClips:     cfg.Clip.MaxClips,
			BurnCaptions: cfg.Clip.BurnCaptions,
		}
		svc.generateDefault = queue.GenerateOptions{
			Voice:      cfg.Generate.Voice,
			MaxFootage: cfg.Generate.MaxFootage,
		}
	}
	return svc
}

// ClipOptions fills unset wire fields from the configured defaults.
func (s *Service) ClipOptions(wire *ClipOptions) queue.ClipOptions {
	opts := s.clipDefaults
	if wire == nil {
		return opts
	}
	if wire.MinDuration != 0 {
		opts.MinDuration = wire.MinDuration
	}
	if wire.MaxDuration != 0 {
		opts.MaxDuration = wire.MaxDuration
	}
	if wire.MaxClips != 0 {
		opts.MaxClips = wire.MaxClips
	}
	if wire.BurnCaptions != nil {
		opts.BurnCaptions = *wire.BurnCaptions
	}
	return opts
}

// GenerateOptions fills unset wire fields from the configured defaults.
func (s *Service) GenerateOptions(wire *GenerateOptions) queue.GenerateOptions {
	opts := s.generateDefault
	if wire == nil {
		return opts
	}
	if voice := strings.TrimSpace(wire.Voice); voice != "" {
		opts.Voice = voice
	}
	if wire.MaxFootage != 0 {
		opts.MaxFootage = wire.MaxFootage
	}
	return opts
}

// EnqueueClipJob creates a pending clip job for a video URL and queues it.
func (s *Service) EnqueueClipJob(ctx context.Context, rawURL string, opts queue.ClipOptions) (string, error) {
	source, err := ValidateSourceURL(rawURL)
	if err != nil {
		return "", err
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return s.enqueue(ctx, &queue.Job{Kind: queue.KindClip, Input: source, ClipOptions: &opts})
}

// EnqueueGenerationJob creates a pending generate job for a topic and queues it.
func (s *Service) EnqueueGenerationJob(ctx context.Context, topic string, opts queue.GenerateOptions) (string, error) {
	topic, err := NormalizeTopic(topic)
	if err != nil {
		return "", err
	}
	opts.Voice = strings.TrimSpace(opts.Voice)
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return s.enqueue(ctx, &queue.Job{Kind: queue.KindGenerate, Input: topic, GenerateOptions: &opts})
}

func (s *Service) enqueue(ctx context.Context, job *queue.Job) (string, error) {
	id, err := s.store.Create(ctx, job)
	if err != nil {
		return "", err
	}
	if s.queue != nil {
		s.queue.Enqueue(id)
	}
	return id, nil
}

// GetJob fetches one job.
func (s *Service) GetJob(ctx context.Context, id string) (*queue.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "get job", "job id is required", nil)
	}
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "get job", fmt.Sprintf("job %s not found", id), nil)
	}
	return job, nil
}

// ListJobs returns a page of jobs, newest first. A non-positive limit means
// DefaultListLimit and larger limits are capped at MaxListLimit.
func (s *Service) ListJobs(ctx context.Context, limit, offset int) ([]*queue.Job, error) {
	if offset < 0 {
		return nil, services.Wrap(services.ErrValidation, "api", "list jobs", "offset must be >= 0", nil)
	}
	return s.store.List(ctx, ClampLimit(limit), offset)
}

// Stats returns job counts keyed by status string.
func (s *Service) Stats(ctx context.Context) (map[string]int, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// ClampLimit applies the default and maximum page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// ValidateSourceURL checks that raw is an absolute http(s) URL with a host.
func ValidateSourceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", services.Wrap(services.ErrValidation, "api", "validate url", "url is required", nil)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "api", "validate url", "url does not parse", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", services.Wrap(services.ErrValidation, "api", "validate url",
			fmt.Sprintf("unsupported scheme %q", parsed.Scheme), nil)
	}
	if parsed.Hostname() == "" {
		return "", services.Wrap(services.ErrValidation, "api", "validate url", "url has no host", nil)
	}
	return raw, nil
}

// NormalizeTopic trims a topic and checks its length in runes.
func NormalizeTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	n := utf8.RuneCountInString(topic)
	if n < MinTopicRunes || n > MaxTopicRunes {
		return "", services.Wrap(services.ErrValidation, "api", "validate topic",
			fmt.Sprintf("topic must be %d-%d characters, got %d", MinTopicRunes, MaxTopicRunes, n), nil)
	}
	return topic, nil
}
