// Package webpage fetches company pages and pulls the "about us" text out of
// them so it can stand in for a typed needs description.
package webpage

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/logger"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "spigell/team-builder"

	acceptEncoding = "gzip"
	maxBodySize    = 5 << 20
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: bad status: %s", e.URL, e.Status)
}

type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	logger     *zap.Logger
}

func NewClient(timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: DefaultUserAgent,
		logger:    logger.OrNop(log),
	}
}

// Fetch returns the body of url as text.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	c.logger.Debug("make request", zap.String("url", url))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{URL: url, Code: resp.StatusCode, Status: resp.Status}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("decode gzip body: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", url, err)
	}

	c.logger.Debug("got page", zap.String("url", url), zap.Int("bytes", len(data)))

	return string(data), nil
}
