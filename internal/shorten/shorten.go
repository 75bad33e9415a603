// Package shorten wraps the TinyURL creation endpoint. A given long URL
// always shortens to the same value, so successful results are cached for
// the whole session.
package shorten

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"metrowatch/internal/cache"
)

const defaultEndpoint = "https://tinyurl.com/api-create.php"

type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      *cache.Cache
	cacheTTL   time.Duration
}

func NewClient(c *cache.Cache, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		cacheTTL:   24 * time.Hour,
	}
}

// Shorten returns the short form of longURL, or an error the caller is
// expected to treat as "fall back to the original". A response body that
// is not itself an http(s) URL counts as a failure.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	key := cache.Key("shorten", longURL)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(string), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?url="+url.QueryEscape(longURL), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("shorten request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shorten: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if err != nil {
		return "", fmt.Errorf("shorten: reading response: %w", err)
	}

	short := strings.TrimSpace(string(body))
	if u, err := url.Parse(short); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("shorten: non-URL response %q", truncate(short, 80))
	}

	if c.cache != nil {
		c.cache.Set(key, short, c.cacheTTL)
	}
	return short, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
