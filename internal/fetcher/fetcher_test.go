package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	podioerrors "github.com/lepinkainen/podio/internal/errors"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>The Rookie - A free audiobook by Scott Sigler</title>
    <link>http://podiobooks.com/title/the-rookie/</link>
    <itunes:author>Scott Sigler</itunes:author>
  </channel>
</rss>`

// flakyServer fails the first failures requests with status, then serves body.
func flakyServer(t *testing.T, failures int32, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failures {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func TestFetchText_Success(t *testing.T) {
	srv, calls := flakyServer(t, 0, 0, "<html>hello</html>")

	f := New(Options{})
	got, err := f.FetchText(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchText_SendsUserAgent(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.UserAgent()
	}))
	t.Cleanup(srv.Close)

	_, err := New(Options{UserAgent: "podio-test"}).FetchText(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "podio-test", agent)
}

func TestFetchText_RetriesServerErrors(t *testing.T) {
	srv, calls := flakyServer(t, 2, http.StatusServiceUnavailable, "recovered")

	f := New(Options{MaxAttempts: 5})
	got, err := f.FetchText(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchText_RetriesTooManyRequests(t *testing.T) {
	srv, calls := flakyServer(t, 1, http.StatusTooManyRequests, "ok")

	got, err := New(Options{MaxAttempts: 2}).FetchText(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchText_ExhaustsAttempts(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusBadGateway, "")

	_, err := New(Options{MaxAttempts: 3}).FetchText(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, podioerrors.IsFetchError(err))

	var fetchErr *podioerrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
	assert.Equal(t, srv.URL, fetchErr.URL)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchText_ClientErrorIsFinal(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusNotFound, "")

	_, err := New(Options{MaxAttempts: 5}).FetchText(context.Background(), srv.URL)

	var fetchErr *podioerrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 1, fetchErr.Attempts)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchText_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(Options{MaxAttempts: 2}).FetchText(context.Background(), url)

	var fetchErr *podioerrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 2, fetchErr.Attempts)
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Err)
}

func TestFetchText_ContextCancelled(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusServiceUnavailable, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{MaxAttempts: 5, RetryDelay: time.Second}).FetchText(ctx, srv.URL)

	require.Error(t, err)
	assert.True(t, podioerrors.IsFetchError(err))
	assert.Zero(t, calls.Load())
}

func TestFetchFeed(t *testing.T) {
	srv, _ := flakyServer(t, 1, http.StatusInternalServerError, sampleFeed)

	parsed, err := New(Options{}).FetchFeed(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "The Rookie - A free audiobook by Scott Sigler", parsed.Title)
	assert.Equal(t, "http://podiobooks.com/title/the-rookie/", parsed.Link)
}

func TestFetchFeed_Unparseable(t *testing.T) {
	srv, _ := flakyServer(t, 0, 0, "this is not a feed")

	_, err := New(Options{}).FetchFeed(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, podioerrors.IsFeedParseError(err))
	assert.False(t, podioerrors.IsFetchError(err))
}
