// Implements the Notion API client with rate limiting and 429 retries.

package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Notion API base URL.
	BaseURL = "https://api.notion.com/v1"
	// APIVersion is the pinned Notion API version.
	APIVersion = "2022-06-28"
	// DefaultRequestsPerSecond is Notion's documented average request rate.
	DefaultRequestsPerSecond = 3.0
	// DefaultMaxRetries bounds the retries of a rate-limited request.
	DefaultMaxRetries = 5
	// DefaultRetryBaseDelay is the first backoff step when Retry-After is absent.
	DefaultRetryBaseDelay = time.Second
	// searchPageSize is the maximum page size accepted by /search.
	searchPageSize = 100
	// maxBackoff caps a single backoff sleep.
	maxBackoff = 60 * time.Second
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client is a rate-limited Notion API client.
type Client struct {
	token          string
	baseURL        string
	apiVersion     string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Tests point this at httptest servers.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIVersion overrides the Notion-Version header.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit sets the sustained request rate. Zero or negative disables pacing.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithRetry sets the retry budget for HTTP 429 responses.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			c.retryBaseDelay = baseDelay
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Notion API client. An empty token is accepted here
// and reported as ErrAuth on the first request.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:          token,
		baseURL:        BaseURL,
		apiVersion:     APIVersion,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs an HTTP request with rate limiting and 429 retries.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%w: integration token is not set", ErrAuth)
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		respBody, retryAfter, err := c.once(ctx, method, path, payload)
		if err == nil {
			return respBody, nil
		}
		if !isRateLimited(err) {
			return nil, err
		}
		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("giving up after %d retries: %w", c.maxRetries, err)
		}

		wait := c.backoff(attempt, retryAfter)
		c.logger.Warn("rate limited by Notion API, backing off",
			"method", method, "path", path, "attempt", attempt+1, "wait", wait)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// once sends a single request. On 429 it also returns the Retry-After delay.
func (c *Client) once(ctx context.Context, method, path string, payload []byte) ([]byte, time.Duration, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("notion request",
		"method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read response: %w", err)
		}
		return respBody, 0, nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best effort for error details
	apiErr := &APIError{Status: resp.StatusCode}
	var eb errorBody
	if json.Unmarshal(respBody, &eb) == nil {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
		apiErr.RequestID = eb.RequestID
	} else {
		apiErr.Message = strings.TrimSpace(string(respBody))
	}

	var retryAfter time.Duration
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	return nil, retryAfter, apiErr
}

// backoff returns the delay before the next attempt. A Retry-After value
// from the server wins; otherwise the delay doubles per attempt.
func (c *Client) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, maxBackoff)
	}
	d := c.retryBaseDelay << attempt
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Search runs one page of a search query.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req.PageSize == 0 {
		req.PageSize = searchPageSize
	}

	data, err := c.do(ctx, http.MethodPost, "/search", req)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &resp, nil
}

// ListAllPages returns every page shared with the integration, following
// search cursors until the API reports no more results. Pages are returned
// in API order. A cursor that comes back a second time is an ErrAPI.
func (c *Client) ListAllPages(ctx context.Context) ([]Page, error) {
	pages := make([]Page, 0)
	var cursor string
	seen := make(map[string]struct{})

	for {
		resp, err := c.Search(ctx, &SearchRequest{
			Filter:      &SearchFilter{Property: "object", Value: "page"},
			StartCursor: cursor,
			PageSize:    searchPageSize,
		})
		if err != nil {
			return nil, err
		}

		for _, p := range resp.Results {
			if p.Object == "" || p.Object == "page" {
				pages = append(pages, p)
			}
		}

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		if _, ok := seen[*resp.NextCursor]; ok {
			return nil, fmt.Errorf("%w: search returned cursor %q twice", ErrAPI, *resp.NextCursor)
		}
		cursor = *resp.NextCursor
		seen[cursor] = struct{}{}
		c.logger.Debug("following search cursor", "pages_so_far", len(pages))
	}

	return pages, nil
}

// GetPage retrieves a page by ID.
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	data, err := c.do(ctx, http.MethodGet, "/pages/"+id, nil)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}
	return &page, nil
}

// Me retrieves the bot user behind the token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	data, err := c.do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	return &user, nil
}
