// Package transport holds the HTTP client shared by the outbound
// collaborators: OCR service, profile page fetch and LLM.
package transport

import (
	"context"
	"errors"
	"fmt"
	"igmetrics/internal/providers"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultAttempts = 3
	retryDelay      = 200 * time.Millisecond
	retryJitter     = 100 * time.Millisecond

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// RequestFunc builds a fresh request for every attempt so bodies can be replayed.
type RequestFunc func(ctx context.Context) (*http.Request, error)

type Client struct {
	http     *http.Client
	attempts uint
	delay    time.Duration
	logger   providers.Logger
}

func NewClient(timeout time.Duration, attempts uint, logger providers.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if attempts == 0 {
		attempts = defaultAttempts
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		attempts: attempts,
		delay:    retryDelay,
		logger:   logger,
	}
}

// Do sends the request and returns the body of a 2xx response. Transport
// errors, 429 and 5xx are retried.
func (c *Client) Do(ctx context.Context, newRequest RequestFunc) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			req, err := newRequest(ctx)
			if err != nil {
				return nil, &requestError{err: err}
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if err != nil {
				return nil, err
			}
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.String(), Body: snippet(body)}
			}
			return body, nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxJitter(retryJitter),
		retry.RetryIf(isRetryableError),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debugf(providers.TypeApp, "Retrying HTTP request, attempt %d: %s", n+1, err)
		}),
	)
}

// requestError marks a request that could not be built; retrying cannot help.
type requestError struct{ err error }

func (e *requestError) Error() string { return "build request: " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// isRetryableError returns true for transient errors that should be retried.
func isRetryableError(err error) bool {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
