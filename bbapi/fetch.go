package bbapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

const (
	DEFAULT_MAX_RETRIES = 3
	DEFAULT_BASE_DELAY  = time.Second
	// Longest single wait between attempts, unless the base delay is longer.
	MAX_RETRY_WAIT = 10 * time.Minute
)

// HTTPError is a completed request with a non-2xx status.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status is a transient gateway failure.
func (e *HTTPError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Fetcher performs single GET requests and retries transient failures with
// exponential backoff: base, 2*base, 4*base, ... between attempts.
type Fetcher struct {
	client     *resty.Client
	maxRetries int
	baseDelay  time.Duration
	timer      backoff.Timer
	logger     *slog.Logger
}

type FetcherOption func(*Fetcher)

// WithRetries sets the total number of attempts and the first backoff delay.
func WithRetries(maxRetries int, baseDelay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.maxRetries = maxRetries
		f.baseDelay = baseDelay
	}
}

// WithTimer replaces the timer used to wait between attempts.
func WithTimer(t backoff.Timer) FetcherOption {
	return func(f *Fetcher) {
		f.timer = t
	}
}

func NewFetcher(client *resty.Client, logger *slog.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:     client,
		maxRetries: DEFAULT_MAX_RETRIES,
		baseDelay:  DEFAULT_BASE_DELAY,
		logger:     loggerOrDefault(logger),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body of url. Network errors and HTTP 502/503/504 are
// retried until maxRetries attempts have been made; any other HTTP error is
// returned at once. The last error is returned when attempts run out.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string
	attempt := 0
	operation := func() error {
		attempt++
		res, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("GET %s: %w", url, err)
		}
		if !res.IsSuccess() {
			httpErr := &HTTPError{URL: url, StatusCode: res.StatusCode()}
			if !httpErr.Retryable() {
				return backoff.Permanent(httpErr)
			}
			return httpErr
		}
		body = res.String()
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Warn("request failed, retrying",
			"url", url, "error", err, "retry_in", wait,
			"attempt", attempt, "max_attempts", f.attempts())
	}

	err := backoff.RetryNotifyWithTimer(operation, f.schedule(ctx), notify, f.timer)
	if err != nil {
		f.logger.Debug("request failed", "url", url, "error", err, "attempts", attempt)
		return "", err
	}
	return body, nil
}

func (f *Fetcher) attempts() int {
	if f.maxRetries < 1 {
		return 1
	}
	return f.maxRetries
}

// schedule builds a jitter-free doubling backoff allowing attempts()-1 waits,
// each capped at MAX_RETRY_WAIT.
func (f *Fetcher) schedule(ctx context.Context) backoff.BackOff {
	base := f.baseDelay
	if base < 0 {
		base = 0
	}
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(base),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(max(base, MAX_RETRY_WAIT)),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(f.attempts()-1)), ctx)
}
