package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	httpClient "github.com/ogri-la/strongbox-disco-go/src/http"
)

// ErrNoResponse is returned when a client yields neither a response nor an error
var ErrNoResponse = errors.New("no response")

// Config holds retry configuration
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultConfig suits the discovery endpoint: a user is waiting on the result
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     4 * time.Second,
	}
}

// Reason explains why an attempt is retried
type Reason string

const (
	NoRetry      Reason = ""
	NetworkError Reason = "network_error"
	RateLimited  Reason = "rate_limited"
	ServerError  Reason = "server_error"
)

// retryReason classifies a response. 2xx, 3xx and 4xx other than 429 are final.
func retryReason(resp *httpClient.Response, err error) Reason {
	switch {
	case err != nil:
		return NetworkError
	case resp.StatusCode == http.StatusTooManyRequests:
		return RateLimited
	case resp.StatusCode >= 500:
		return ServerError
	default:
		return NoRetry
	}
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP date
func retryAfter(resp *httpClient.Response, now time.Time) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	value := resp.Headers["Retry-After"]
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil && when.After(now) {
		return when.Sub(now), true
	}
	return 0, false
}

// backoff returns the delay before the attempt following `attempt`
func backoff(resp *httpClient.Response, attempt int, config Config, now time.Time) time.Duration {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		if delay, ok := retryAfter(resp, now); ok {
			return min(delay, config.MaxDelay)
		}
	}

	delay := config.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > config.MaxDelay {
			return config.MaxDelay
		}
	}
	return delay
}

// WithRetry wraps an HTTP GET with retries and exponential backoff.
// A final non-200 response is returned without error so callers can report its status.
func WithRetry(ctx context.Context, client httpClient.HTTPClient, url string, config Config) (*httpClient.Response, error) {
	var lastErr error
	var lastResp *httpClient.Response

	// always make at least one request
	maxAttempts := max(config.MaxAttempts, 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			slog.Warn("retrying request", "url", url, "attempt", attempt, "max-attempts", maxAttempts)
		}

		resp, err := client.Get(ctx, url)
		if err == nil && resp == nil {
			err = ErrNoResponse
		}
		if err == nil && resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		lastResp, lastErr = resp, err

		reason := retryReason(resp, err)
		if reason == NoRetry {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == maxAttempts {
			break
		}

		delay := backoff(resp, attempt, config, time.Now())
		slog.Info("backing off before retry", "url", url, "delay", delay, "reason", reason)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
	}
	return lastResp, nil
}
