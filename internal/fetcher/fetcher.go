// Package fetcher retrieves listing pages and feeds over HTTP with a
// bounded number of attempts per document.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	podioerrors "github.com/lepinkainen/podio/internal/errors"
	"github.com/lepinkainen/podio/internal/feed"
)

const (
	// DefaultMaxAttempts is the total number of tries per document
	DefaultMaxAttempts = 5
	// DefaultTimeout bounds a single attempt
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the scraper to the site
	DefaultUserAgent = "podio/1.0"
)

// Options configures a Fetcher. Zero values fall back to the defaults above;
// a zero RetryDelay retries immediately and a zero Deadline means no
// overall limit beyond the caller's context.
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
	Deadline    time.Duration
	UserAgent   string
	HTTPClient  *http.Client
}

// Fetcher retrieves documents with bounded retry.
type Fetcher struct {
	client   *resty.Client
	attempts int
	deadline time.Duration
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	client.SetLogger(slogLogger{})
	client.SetRetryCount(opts.MaxAttempts - 1)
	client.SetRetryWaitTime(opts.RetryDelay)
	client.SetRetryMaxWaitTime(opts.RetryDelay)
	client.AddRetryCondition(shouldRetry)
	client.AddRetryHook(logRetry)

	return &Fetcher{
		client:   client,
		attempts: opts.MaxAttempts,
		deadline: opts.Deadline,
	}
}

// FetchText returns the full body of url as text.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	body, err := f.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchFeed returns the body of url parsed as an RSS or Atom feed.
func (f *Fetcher) FetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	body, err := f.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	// gofeed parsers keep per-parse state, so each call gets its own.
	parsed, err := feed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, podioerrors.WrapFeedParseError(url, err)
	}
	return parsed, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	if f.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.deadline)
		defer cancel()
	}

	req := f.client.R().SetContext(ctx)
	resp, err := req.Get(url)

	attempts := req.Attempt
	if attempts == 0 {
		attempts = 1
	}

	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		return nil, podioerrors.NewFetchError(url, attempts, status, err)
	}

	if resp.IsError() {
		return nil, podioerrors.NewFetchError(url, attempts, resp.StatusCode(),
			fmt.Errorf("unexpected status %s", resp.Status()))
	}

	slog.Debug("Fetched document", "url", url, "attempts", attempts, "bytes", len(resp.Body()))
	return resp.Body(), nil
}

// shouldRetry retries transport failures, throttling and server errors.
// Any other status is final.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func logRetry(resp *resty.Response, err error) {
	if resp == nil || resp.Request == nil {
		slog.Warn("Fetch attempt failed", "error", err)
		return
	}

	attrs := []any{"url", resp.Request.URL, "attempt", resp.Request.Attempt}
	if err != nil {
		attrs = append(attrs, "error", err)
	} else {
		attrs = append(attrs, "status", resp.StatusCode())
	}
	slog.Warn("Fetch attempt failed", attrs...)
}
