// Package apiclient is the CLI's HTTP client for the daemon API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shortforge/internal/api"
)

// ErrAPIUnavailable is returned when no daemon address is configured.
var ErrAPIUnavailable = errors.New("daemon API unavailable")

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx reply decoded from the daemon.
type APIError struct {
	StatusCode int
	Message    string
	Kind       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to a running daemon.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// New builds a client for bind ("host:port" or a full URL). An empty bind
// returns ErrAPIUnavailable.
func New(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, ErrAPIUnavailable
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse api address: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

// SubmitClip queues a clip job.
func (c *Client) SubmitClip(ctx context.Context, req api.ClipRequest) (api.EnqueueResponse, error) {
	var resp api.EnqueueResponse
	err := c.do(ctx, http.MethodPost, "/api/jobs/clip", nil, req, &resp)
	return resp, err
}

// SubmitGenerate queues a generate job.
func (c *Client) SubmitGenerate(ctx context.Context, req api.GenerateRequest) (api.EnqueueResponse, error) {
	var resp api.EnqueueResponse
	err := c.do(ctx, http.MethodPost, "/api/jobs/generate", nil, req, &resp)
	return resp, err
}

// Job fetches one job.
func (c *Client) Job(ctx context.Context, id string) (api.Job, error) {
	var resp api.JobResponse
	err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(strings.TrimSpace(id)), nil, nil, &resp)
	return resp.Job, err
}

// Jobs fetches a page of jobs, newest first.
func (c *Client) Jobs(ctx context.Context, limit, offset int) (api.JobListResponse, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	var resp api.JobListResponse
	err := c.do(ctx, http.MethodGet, "/api/jobs", values, nil, &resp)
	return resp, err
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var resp api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &resp)
	return resp, err
}

// Health fetches the readiness report. An unhealthy report is returned
// without error.
func (c *Client) Health(ctx context.Context) (api.HealthReport, error) {
	var resp api.HealthReport
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && len(resp.Checks) > 0 {
		return resp, nil
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return ErrAPIUnavailable
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var decoded api.ErrorResponse
		if json.Unmarshal(payload, &decoded) == nil && decoded.Error != "" {
			apiErr.Message = decoded.Error
			apiErr.Kind = decoded.Kind
		} else if dest != nil {
			_ = json.Unmarshal(payload, dest)
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsUnavailable reports whether err means no daemon answered.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrAPIUnavailable) || errors.As(err, &opErr)
}

// IsNotFound reports whether err is a 404 from the daemon.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
