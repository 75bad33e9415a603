// Package serpapi is a minimal client for the SerpApi google_news_light
// engine and the account endpoint. Only the fields this application reads
// are modeled.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://serpapi.com"

// Client issues search and account requests for one API key. One attempt
// per call; the per-request timeout is the only temporal bound.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given key. timeout bounds every request.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchOptions shape one google_news_light query.
type SearchOptions struct {
	Language string // hl, e.g. "zh-tw"
	Country  string // gl, e.g. "tw"
	Num      int    // requested result count
	Window   string // tbs recency hint, e.g. "qdr:d"
	Start    int    // pagination offset
}

type searchResponse struct {
	NewsResults []NewsResult `json:"news_results"`
	Error       string       `json:"error"`
}

// Search runs one query and returns the raw results in provider order,
// including nested related stories.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]NewsResult, error) {
	params := url.Values{}
	params.Set("engine", "google_news_light")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	if opts.Language != "" {
		params.Set("hl", opts.Language)
	}
	if opts.Country != "" {
		params.Set("gl", opts.Country)
	}
	if opts.Num > 0 {
		params.Set("num", strconv.Itoa(opts.Num))
	}
	if opts.Window != "" {
		params.Set("tbs", opts.Window)
	}
	if opts.Start > 0 {
		params.Set("start", strconv.Itoa(opts.Start))
	}

	var sr searchResponse
	if err := c.getJSON(ctx, "/search.json", params, &sr); err != nil {
		return nil, err
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", sr.Error)
	}
	return sr.NewsResults, nil
}

// AccountInfo is the read-only usage quota for one API key.
type AccountInfo struct {
	SearchesPerMonth int `json:"searches_per_month"`
	PlanSearchesLeft int `json:"plan_searches_left"`
}

// Used returns how many searches the plan has consumed this month.
func (a AccountInfo) Used() int {
	return a.SearchesPerMonth - a.PlanSearchesLeft
}

// Account fetches the quota for this client's key.
func (c *Client) Account(ctx context.Context) (*AccountInfo, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)

	var info AccountInfo
	if err := c.getJSON(ctx, "/account", params, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("serpapi %s: status %d: %s", path, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("serpapi %s: decoding response: %w", path, err)
	}
	return nil
}
