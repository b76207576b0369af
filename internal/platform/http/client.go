package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// initialRetryInterval is the first backoff sleep; later sleeps grow by
// backoff.DefaultMultiplier.
const initialRetryInterval = 200 * time.Millisecond

// RetryBudget is the longest a request can take with the given per-attempt
// timeout and retry count: every attempt timing out plus the largest
// jittered sleep between attempts.
func RetryBudget(timeout time.Duration, retries int) time.Duration {
	budget := timeout * time.Duration(retries+1)
	interval := float64(initialRetryInterval)
	for i := 0; i < retries; i++ {
		sleep := interval * (1 + backoff.DefaultRandomizationFactor)
		if limit := float64(backoff.DefaultMaxInterval); sleep > limit {
			sleep = limit
		}
		budget += time.Duration(sleep)
		interval *= backoff.DefaultMultiplier
	}
	return budget
}

// Client is a wrapper for HTTP client with rate limiting
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Headers    map[string]string

	maxRetries      int
	maxRetryTimeout time.Duration
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	Headers         map[string]string
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter:         rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		Headers:         opts.Headers,
		maxRetries:      opts.MaxRetries,
		maxRetryTimeout: opts.MaxRetryTimeout,
	}
}

// DoRequest performs an HTTP request with rate limiting and retries.
// The caller owns the returned body.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	// Use exponential backoff for retries
	var resp *http.Response
	operation := func() error {
		// Wait for rate limiter on every attempt
		if err := c.Limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var err error
		resp, err = c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			if !statusErr.Retryable() {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.InitialInterval = initialRetryInterval
	backoffStrategy.MaxElapsedTime = c.maxRetryTimeout

	var policy backoff.BackOff = backoffStrategy
	policy = backoff.WithMaxRetries(policy, uint64(c.maxRetries))
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

// GetJSON issues a GET to rawURL with query params and decodes a JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-200 status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether another attempt could succeed.
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
