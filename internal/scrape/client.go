package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Client is the shared HTTP fetcher for all scrapers. It applies a polite
// delay before every request and retries failed requests with an increasing
// backoff before giving up on an item.
type Client struct {
	http       *http.Client
	userAgent  string
	delay      time.Duration
	retries    int
	retryDelay time.Duration
	tempDir    string

	// overridable in tests
	sleep func(time.Duration)
}

type Option func(*Client)

func WithRetries(n int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.retryDelay = delay
	}
}

func WithDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

func WithTempDir(dir string) Option {
	return func(c *Client) { c.tempDir = dir }
}

func WithSleepFunc(f func(time.Duration)) Option {
	return func(c *Client) { c.sleep = f }
}

func NewClient(userAgent string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		delay:      time.Second,
		retries:    3,
		retryDelay: 5 * time.Second,
		tempDir:    "temp",
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches a URL, returning the response body. The caller owns the body
// and must close it.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	c.sleep(c.delay)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			slog.WarnContext(ctx, "request failed, retrying",
				"url", url, "attempt", attempt, "max_attempts", c.retries, "error", lastErr)
			c.sleep(c.retryDelay * time.Duration(attempt))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
			continue
		}
		return resp.Body, nil
	}

	return nil, fmt.Errorf("request to %s failed after %d retries: %w", url, c.retries, lastErr)
}

// DownloadFile streams a URL into the temp directory and returns the path
// of the written file.
func (c *Client) DownloadFile(ctx context.Context, url, filename string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(c.tempDir, 0o750); err != nil {
		return "", err
	}

	path := filepath.Join(c.tempDir, filename)
	f, err := os.Create(path) // #nosec G304 -- filename is sanitized by the caller
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}

	slog.InfoContext(ctx, "downloaded file", "url", url, "path", path)
	return path, nil
}
