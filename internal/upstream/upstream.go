// Package upstream fetches playlists and origin streams with the headers
// smart-TV players send, turning every transport failure, timeout, or
// non-2xx status into a FetchError.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Jash-k/MyTVStremioAddon/internal/metrics"
	"github.com/Jash-k/MyTVStremioAddon/pkg/httpclient"
)

// DefaultMaxDocumentSize bounds Fetch bodies; playlists and manifests are text.
const DefaultMaxDocumentSize = 32 << 20

// FetchError reports a failed upstream call.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTimeout reports whether the failure was a deadline.
func (e *FetchError) IsTimeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Document is a fully read upstream response.
type Document struct {
	Body []byte
	// FinalURL is the URL the body was served from after redirects.
	FinalURL    string
	ContentType string
}

// Headers are the identifying request headers sent upstream.
type Headers struct {
	UserAgent string
	Accept    string
	Referer   string
}

// Fetcher performs bounded GET requests against upstream hosts.
type Fetcher struct {
	client  *httpclient.Client
	headers Headers
	timeout time.Duration
	maxSize int64
	logger  *slog.Logger
	metrics *metrics.Metrics
	kind    string
}

// NewFetcher creates a Fetcher over client. timeout bounds Fetch as a whole
// and Open up to the response headers.
func NewFetcher(client *httpclient.Client, headers Headers, timeout time.Duration) *Fetcher {
	if headers.Accept == "" {
		headers.Accept = "*/*"
	}
	return &Fetcher{
		client:  client,
		headers: headers,
		timeout: timeout,
		maxSize: DefaultMaxDocumentSize,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger.
func (f *Fetcher) WithLogger(logger *slog.Logger) *Fetcher {
	f.logger = logger
	return f
}

// WithMetrics records every request under the given kind label
// ("playlist", "manifest", "proxy").
func (f *Fetcher) WithMetrics(m *metrics.Metrics, kind string) *Fetcher {
	f.metrics = m
	f.kind = kind
	return f
}

// WithMaxSize overrides DefaultMaxDocumentSize.
func (f *Fetcher) WithMaxSize(n int64) *Fetcher {
	f.maxSize = n
	return f
}

// Fetch reads the whole response body of url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.do(ctx, url)
	if err != nil {
		return Document{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return Document{}, &FetchError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > f.maxSize {
		return Document{}, &FetchError{URL: url, Err: httpclient.ErrResponseTooLarge}
	}

	return Document{
		Body:        body,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Open starts a streaming GET of url. The timeout applies until response
// headers arrive; after that the body streams until ctx ends or the caller
// closes it.
func (f *Fetcher) Open(ctx context.Context, url string) (*http.Response, error) {
	ctx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(f.timeout, cancel)

	resp, err := f.do(ctx, url)
	timer.Stop()
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (f *Fetcher) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if f.headers.UserAgent != "" {
		req.Header.Set("User-Agent", f.headers.UserAgent)
	}
	req.Header.Set("Accept", f.headers.Accept)
	if f.headers.Referer != "" {
		req.Header.Set("Referer", f.headers.Referer)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.UpstreamFetch(f.kind, 0)
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, &FetchError{URL: url, Err: err}
	}
	f.metrics.UpstreamFetch(f.kind, resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	f.logger.DebugContext(ctx, "upstream response",
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
