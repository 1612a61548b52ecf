package edgar

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"dealscout/internal/config"
)

const (
	defaultMinRequestGap  = 150 * time.Millisecond
	defaultMaxRetries     = 3
	defaultInitialBackoff = time.Second
	defaultTimeout        = 30 * time.Second
)

// Client is a paced, retrying HTTP client for the SEC EDGAR endpoints.
//
// A single rate limiter serializes outbound request timing across all
// callers, so the minimum inter-request gap holds even if discovery and
// document fetches ever run concurrently. Retries on transient failures
// (5xx, 429, network errors) use bounded exponential backoff.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	limiter        *rate.Limiter
	maxRetries     int
	initialBackoff time.Duration
	sleep          func(time.Duration)
}

// NewClient creates a Client from config. The user agent is mandatory:
// the SEC blocks requests without a contact-identifying User-Agent, so
// an empty value is a configuration error, not something to retry.
func NewClient(cfg *config.EdgarConfig) (*Client, error) {
	return newClient(cfg, time.Sleep)
}

// NewClientWithSleep creates a Client with a custom backoff sleep
// function (for testing).
func NewClientWithSleep(cfg *config.EdgarConfig, sleep func(time.Duration)) (*Client, error) {
	return newClient(cfg, sleep)
}

func newClient(cfg *config.EdgarConfig, sleep func(time.Duration)) (*Client, error) {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, fmt.Errorf("edgar: user agent is required (set DEALSCOUT_EDGAR_USER_AGENT to a contact-identifying string)")
	}

	gap := cfg.MinRequestGap
	if gap <= 0 {
		gap = defaultMinRequestGap
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = defaultInitialBackoff
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		userAgent:      cfg.UserAgent,
		limiter:        rate.NewLimiter(rate.Every(gap), 1),
		maxRetries:     maxRetries,
		initialBackoff: backoff,
		sleep:          sleep,
	}, nil
}

// Get fetches url and returns the response body and status code.
// Transient failures are retried transparently; after exhausting
// retries the call fails with an *ExhaustedError carrying the last
// observed status or error.
func (c *Client) Get(ctx context.Context, url, accept string) ([]byte, int, error) {
	var (
		lastStatus int
		lastErr    error
	)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.initialBackoff << (attempt - 1)
			log.Printf("edgar.Client: retry %d/%d for %s in %s: %v",
				attempt, c.maxRetries, url, delay, retryReason(lastStatus, lastErr))
			c.sleep(delay)
		}

		body, status, err := c.do(ctx, url, accept)
		if err != nil {
			if ctx.Err() != nil {
				return nil, status, err
			}
			lastStatus, lastErr = status, err
			continue
		}
		if status >= 200 && status < 300 {
			return body, status, nil
		}
		if !retryable(status) {
			return body, status, &StatusError{URL: url, StatusCode: status}
		}
		lastStatus, lastErr = status, nil
	}

	return nil, lastStatus, &ExhaustedError{
		URL:        url,
		Attempts:   c.maxRetries + 1,
		StatusCode: lastStatus,
		Err:        lastErr,
	}
}

func (c *Client) do(ctx context.Context, url, accept string) ([]byte, int, error) {
	// Pacing gate: blocks until the minimum gap since the previous
	// outbound request has elapsed.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// retryable reports whether an HTTP status is worth retrying: server
// errors and rate limiting only. Other client errors fail immediately.
func retryable(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

func retryReason(status int, err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("upstream returned status %d", status)
}
