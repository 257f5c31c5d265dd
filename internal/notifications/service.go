package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"shortforge/internal/config"
	"shortforge/internal/queue"
)

const (
	userAgent      = "shortforge/0.1"
	inputPreview   = 80
	defaultTimeout = 10 * time.Second
)

// Service defines the notification surface used by the workflow manager.
type Service interface {
	NotifyJobCompleted(ctx context.Context, job *queue.Job) error
	NotifyJobFailed(ctx context.Context, job *queue.Job) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		completed: cfg.Notifications.JobCompleted,
		failed:    cfg.Notifications.JobFailed,
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	completed bool
	failed    bool
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, job *queue.Job) error {
	if !n.completed || job == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s ready: %s", kindLabel(job.Kind), preview(job.Input))
	if job.OutputRef != "" {
		fmt.Fprintf(&b, "\nFile: %s", filepath.Base(job.OutputRef))
	}
	if job.Score != nil {
		fmt.Fprintf(&b, "\nVirality score: %.1f", *job.Score)
	}
	return n.send(ctx, payload{
		title:   "shortforge - Job Complete",
		message: b.String(),
		tags:    []string{"shortforge", string(job.Kind), "completed"},
	})
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, job *queue.Job) error {
	if !n.failed || job == nil {
		return nil
	}
	reason := strings.TrimSpace(job.Error)
	if reason == "" {
		reason = "unknown error"
	}
	return n.send(ctx, payload{
		title:    "shortforge - Job Failed",
		message:  fmt.Sprintf("%s failed: %s\n%s", kindLabel(job.Kind), preview(job.Input), reason),
		tags:     []string{"shortforge", string(job.Kind), "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "shortforge - Test",
		message:  "Notification system test",
		tags:     []string{"shortforge", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func kindLabel(kind queue.Kind) string {
	switch kind {
	case queue.KindClip:
		return "Clip"
	case queue.KindGenerate:
		return "Generated video"
	default:
		return "Job"
	}
}

func preview(input string) string {
	input = strings.TrimSpace(input)
	if utf8.RuneCountInString(input) <= inputPreview {
		return input
	}
	runes := []rune(input)
	return string(runes[:inputPreview-3]) + "..."
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, *queue.Job) error { return nil }
func (noopService) NotifyJobFailed(context.Context, *queue.Job) error    { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
