// Package pexels searches and downloads stock footage from the Pexels video
// API.
package pexels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"shortforge/internal/logging"
	"shortforge/internal/services"
)

const (
	defaultBaseURL     = "https://api.pexels.com"
	defaultPerPage     = 5
	defaultOrientation = "portrait"
	defaultTimeout     = 30 * time.Second
	targetWidth        = 1080
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("pexels api key not configured")

// Config configures the client.
type Config struct {
	APIKey         string
	BaseURL        string
	PerPage        int
	Orientation    string
	TimeoutSeconds int
}

// Video is one search result.
type Video struct {
	ID       int64       `json:"id"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Duration int         `json:"duration"`
	Files    []VideoFile `json:"video_files"`
}

// VideoFile is one rendition of a video.
type VideoFile struct {
	ID       int64  `json:"id"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Link     string `json:"link"`
}

type searchResponse struct {
	Videos []Video `json:"videos"`
}

// Client talks to the Pexels API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a client.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	if strings.TrimSpace(cfg.Orientation) == "" {
		cfg.Orientation = defaultOrientation
	}
	if httpClient == nil {
		timeout := defaultTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logging.NewComponentLogger(logger, "pexels")}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Search returns videos matching query.
func (c *Client) Search(ctx context.Context, query string) ([]Video, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	values := url.Values{}
	values.Set("query", query)
	values.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	values.Set("orientation", c.cfg.Orientation)
	endpoint := c.cfg.BaseURL + "/videos/search?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pexels search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("pexels search: decode: %w", err)
	}
	return payload.Videos, nil
}

// BestFile picks the rendition whose width is closest to 1080.
func BestFile(video Video) (VideoFile, bool) {
	var best VideoFile
	found := false
	for _, file := range video.Files {
		if strings.TrimSpace(file.Link) == "" {
			continue
		}
		if !found || distance(file.Width) < distance(best.Width) {
			best = file
			found = true
		}
	}
	return best, found
}

func distance(width int) int {
	if width <= 0 {
		width = targetWidth
	}
	d := width - targetWidth
	if d < 0 {
		return -d
	}
	return d
}

// Download writes link to dest, removing partial files on failure.
func (c *Client) Download(ctx context.Context, link, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("pexels download returned status %d", resp.StatusCode)
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}

// Fetch searches each keyword in order and downloads one new video per
// keyword into destDir until limit files are saved. Failed queries are logged
// and skipped; an empty result is not an error here.
func (c *Client) Fetch(ctx context.Context, keywords []string, limit int, destDir string) ([]string, error) {
	if !c.Configured() {
		return nil, services.Wrap(services.ErrConfiguration, "visuals", "search footage", "set stock.api_key or PEXELS_API_KEY", ErrNotConfigured)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "visuals", "ensure dir", destDir, err)
	}
	seen := make(map[int64]bool)
	var paths []string
	for _, keyword := range keywords {
		if len(paths) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		path, err := c.fetchOne(ctx, keyword, destDir, seen)
		if err != nil {
			c.logger.Warn("stock footage query failed",
				logging.String("query", keyword),
				logging.Error(err),
				logging.String(logging.FieldEventType, "footage_query_failed"),
				logging.String(logging.FieldErrorHint, "check the Pexels API key and network access"),
			)
			continue
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (c *Client) fetchOne(ctx context.Context, keyword, destDir string, seen map[int64]bool) (string, error) {
	videos, err := c.Search(ctx, keyword)
	if err != nil {
		return "", err
	}
	for _, video := range videos {
		if seen[video.ID] {
			continue
		}
		file, ok := BestFile(video)
		if !ok {
			continue
		}
		seen[video.ID] = true
		dest := filepath.Join(destDir, "pexels_"+uuid.NewString()+".mp4")
		if err := c.Download(ctx, file.Link, dest); err != nil {
			return "", err
		}
		c.logger.Info("stock footage downloaded",
			logging.String("query", keyword),
			logging.Int64("video_id", video.ID),
			logging.Int("width", file.Width),
			logging.String(logging.FieldEventType, "footage_downloaded"),
		)
		return dest, nil
	}
	return "", nil
}
