package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout = 60 * time.Second
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("llm api key not configured")

// Config holds the endpoint, credentials and model for chat completions.
// Referer and Title become OpenRouter's attribution headers.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// retryPolicy bounds retries of transient failures. Waits double from base
// and never exceed max.
type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
	sleep    func(time.Duration)
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	wait := p.base
	for i := 1; i < attempt && wait < p.max; i++ {
		wait *= 2
	}
	if p.max > 0 {
		wait = min(wait, p.max)
	}
	return wait
}

func (p retryPolicy) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if p.sleep != nil {
		p.sleep(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client sends JSON-mode chat completions to an OpenRouter compatible API.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retryPolicy
}

// Option customizes the client.
type Option func(*Client)

func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.attempts = attempts }
}

func WithRetryBackoff(base, max time.Duration) Option {
	return func(c *Client) { c.retry.base, c.retry.max = base, max }
}

// WithSleeper replaces real waits between retries, for tests.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleep = sleep }
}

func NewClient(cfg Config, opts ...Option) *Client {
	for _, field := range []*string{&cfg.APIKey, &cfg.BaseURL, &cfg.Model, &cfg.Referer, &cfg.Title} {
		*field = strings.TrimSpace(*field)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		retry: retryPolicy{attempts: 5, base: time.Second, max: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// CompleteJSON sends a system and a user prompt in JSON response mode and
// returns the model's raw content.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	systemPrompt, userPrompt = strings.TrimSpace(systemPrompt), strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", errors.New("llm complete: system prompt required")
	case userPrompt == "":
		return "", errors.New("llm complete: user prompt required")
	case !c.Configured():
		return "", fmt.Errorf("llm complete: %w", ErrNotConfigured)
	}
	return c.complete(ctx, "llm complete", chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
}

// HealthCheck asks the model for {"ok":true} to prove the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, "Reply with a JSON object only.", `Return {"ok":true}`, 0)
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &reply); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !reply.OK {
		return errors.New("llm health: model did not confirm")
	}
	return nil
}
