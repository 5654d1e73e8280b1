package connector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"replydesk/errors"
)

const (
	requestTimeout = 10 * time.Second
	maxAttempts    = 3
	baseBackoff    = time.Second
)

// restClient is the transport shared by the real REST variants. It owns
// the retry policy: up to maxAttempts tries with exponential backoff,
// and only transient failures (network errors, 5xx, 429) are retried.
type restClient struct {
	http    *http.Client
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func newRestClient(log *slog.Logger) *restClient {
	return &restClient{
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
		backoff: exponentialBackoff,
	}
}

func exponentialBackoff(attempt int) time.Duration {
	return baseBackoff << (attempt - 1)
}

// withRetry runs fn until it succeeds or fails with a permanent error,
// bounded by maxAttempts. Auth rejections come back immediately.
func withRetry(ctx context.Context, backoff func(int) time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(attempt - 1)):
			}
		}
		if err = fn(); err == nil || !errors.Is(err, errors.ErrTransientProvider) {
			return err
		}
	}
	return err
}

func (c *restClient) get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, headers, nil)
}

func (c *restClient) postJSON(ctx context.Context, rawURL string, headers map[string]string, body []byte) ([]byte, error) {
	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}
	return c.do(ctx, http.MethodPost, rawURL, merged, body)
}

// do performs one logical request. The *http.Request is rebuilt on every
// attempt so the body reader is fresh after a failed try.
func (c *restClient) do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) ([]byte, error) {
	var payload []byte
	err := withRetry(ctx, c.backoff, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrTransientProvider, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrTransientProvider, err)
		}
		if err := classifyStatus(resp.StatusCode); err != nil {
			// The URL can embed credentials, log the host only.
			c.log.Debug("provider call failed", "host", req.URL.Host, "status", resp.StatusCode)
			return err
		}
		payload = data
		return nil
	})
	return payload, err
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", errors.ErrAuthentication, code)
	case code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: status %d", errors.ErrTransientProvider, code)
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
