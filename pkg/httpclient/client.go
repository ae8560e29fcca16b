// Package httpclient provides a resilient HTTP client with per-host circuit
// breakers, automatic retries, transparent decompression, and structured
// logging.
package httpclient

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
)

// Common errors returned by the client.
var (
	ErrCircuitOpen      = errors.New("circuit breaker is open")
	ErrMaxRetries       = errors.New("max retries exceeded")
	ErrResponseTooLarge = errors.New("response body exceeds maximum size limit")
)

// Default configuration values.
const (
	DefaultTimeout              = 15 * time.Second
	DefaultRetryAttempts        = 1
	DefaultRetryDelay           = 500 * time.Millisecond
	DefaultRetryMaxDelay        = 5 * time.Second
	DefaultBackoffMultiplier    = 2.0
	DefaultCircuitThreshold     = 5
	DefaultCircuitTimeout       = 30 * time.Second
	DefaultAcceptEncodingHeader = "gzip, deflate, br"
)

// HTTP header constants.
const (
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderContentEncoding = "Content-Encoding"
	HeaderUserAgent       = "User-Agent"

	EncodingGzip    = "gzip"
	EncodingDeflate = "deflate"
	EncodingBrotli  = "br"
)

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout bounds each attempt, including reading headers.
	Timeout time.Duration

	// RetryAttempts is the number of retries after the first attempt.
	RetryAttempts int

	// RetryDelay is the initial delay between retries.
	RetryDelay time.Duration

	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// CircuitThreshold is the number of consecutive failures before a host's circuit opens.
	CircuitThreshold int

	// CircuitTimeout is how long a circuit stays open before a probe is allowed.
	CircuitTimeout time.Duration

	// UserAgent is sent when the request has none.
	UserAgent string

	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// EnableDecompression requests and transparently decodes gzip, deflate and brotli bodies.
	EnableDecompression bool

	// MaxResponseSize limits the decoded body size. 0 disables the limit.
	MaxResponseSize int64

	// BaseClient is the underlying http.Client. If nil, one is created.
	BaseClient *http.Client
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:             DefaultTimeout,
		RetryAttempts:       DefaultRetryAttempts,
		RetryDelay:          DefaultRetryDelay,
		RetryMaxDelay:       DefaultRetryMaxDelay,
		BackoffMultiplier:   DefaultBackoffMultiplier,
		CircuitThreshold:    DefaultCircuitThreshold,
		CircuitTimeout:      DefaultCircuitTimeout,
		Logger:              slog.Default(),
		EnableDecompression: true,
	}
}

// Client is a resilient HTTP client. Each upstream host gets its own circuit
// breaker so one dead origin does not block the others.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// New creates a new resilient HTTP client with the given configuration.
func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = DefaultBackoffMultiplier
	}

	baseClient := cfg.BaseClient
	if baseClient == nil {
		// Timeouts are applied per attempt through the request context, so
		// streaming bodies are not cut off once headers have arrived.
		baseClient = &http.Client{}
	}

	return &Client{
		config:   cfg,
		client:   baseClient,
		logger:   cfg.Logger,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// NewWithDefaults creates a new client with default configuration.
func NewWithDefaults() *Client {
	return New(DefaultConfig())
}

// Breaker returns the circuit breaker for host, creating it on first use.
func (c *Client) Breaker(host string) *CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	cb, ok := c.breakers[host]
	if !ok {
		cb = NewCircuitBreaker(c.config.CircuitThreshold, c.config.CircuitTimeout)
		c.breakers[host] = cb
	}
	return cb
}

// Do executes an HTTP request with circuit breaker protection and automatic
// retries. The caller owns the returned body. For a successful call
// resp.Request.URL is the final URL after redirects.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if req.Header.Get(HeaderUserAgent) == "" && c.config.UserAgent != "" {
		req.Header.Set(HeaderUserAgent, c.config.UserAgent)
	}
	if c.config.EnableDecompression && req.Header.Get(HeaderAcceptEncoding) == "" {
		req.Header.Set(HeaderAcceptEncoding, DefaultAcceptEncodingHeader)
	}

	breaker := c.Breaker(req.URL.Host)
	log := c.logger.With(slog.String("url", req.URL.String()), slog.String("method", req.Method))

	var lastErr error
	delay := c.config.RetryDelay

	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			log.Debug("retrying request", slog.Int("attempt", attempt), slog.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay = min(time.Duration(float64(delay)*c.config.BackoffMultiplier), c.config.RetryMaxDelay)
		}

		if !breaker.Allow() {
			log.Warn("circuit breaker open, skipping request", slog.String("host", req.URL.Host))
			return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, req.URL.Host)
		}

		resp, err := c.attempt(ctx, req)
		if err != nil {
			breaker.RecordFailure()
			lastErr = err
			log.Warn("request failed", slog.String("error", err.Error()), slog.Int("attempt", attempt))

			// The caller's own deadline or cancellation ends the call.
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}

		if isRetryableStatus(resp.StatusCode) {
			breaker.RecordFailure()
			lastErr = fmt.Errorf("retryable status code: %d", resp.StatusCode)
			log.Warn("retryable status code", slog.Int("status", resp.StatusCode), slog.Int("attempt", attempt))
			resp.Body.Close()
			continue
		}

		// 4xx is the origin answering; only server faults count against the host.
		if resp.StatusCode >= http.StatusInternalServerError {
			breaker.RecordFailure()
		} else {
			breaker.RecordSuccess()
		}

		log.Debug("request completed",
			slog.Int("status", resp.StatusCode),
			slog.Int64("content_length", resp.ContentLength),
		)

		if c.config.EnableDecompression {
			resp.Body = c.wrapDecompression(resp)
		}
		// Applied after decompression so a small compressed payload cannot expand without bound.
		if c.config.MaxResponseSize > 0 {
			resp.Body = newLimitedReader(resp.Body, c.config.MaxResponseSize)
		}

		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaxRetries, lastErr)
	}
	return nil, ErrMaxRetries
}

// attempt runs one request bounded by the configured timeout. The timeout
// covers the whole body read, so the cancel func is released on Close.
func (c *Client) attempt(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.config.Timeout <= 0 {
		return c.client.Do(req.WithContext(ctx))
	}
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	resp, err := c.client.Do(req.WithContext(attemptCtx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// Get performs a GET request to the specified URL.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.Do(req)
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

// wrapDecompression wraps the response body according to Content-Encoding
// and removes the header once the body is decoded.
func (c *Client) wrapDecompression(resp *http.Response) io.ReadCloser {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get(HeaderContentEncoding)))
	if encoding == "" || encoding == "identity" {
		return resp.Body
	}

	var reader io.Reader
	switch encoding {
	case EncodingGzip:
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			c.logger.Warn("failed to create gzip reader, returning raw body", slog.String("error", err.Error()))
			return resp.Body
		}
		reader = gz
	case EncodingDeflate:
		reader = flate.NewReader(resp.Body)
	case EncodingBrotli:
		reader = brotli.NewReader(resp.Body)
	default:
		c.logger.Debug("unknown content encoding, returning raw body", slog.String("encoding", encoding))
		return resp.Body
	}

	resp.Header.Del(HeaderContentEncoding)
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return &decompressReader{reader: reader, closer: resp.Body}
}

// decompressReader wraps a decompression reader with the original body closer.
type decompressReader struct {
	reader io.Reader
	closer io.Closer
}

func (d *decompressReader) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressReader) Close() error {
	if closer, ok := d.reader.(io.Closer); ok {
		closer.Close()
	}
	return d.closer.Close()
}

// limitedReader returns ErrResponseTooLarge once more than limit bytes are read.
type limitedReader struct {
	reader    io.ReadCloser
	remaining int64
}

func newLimitedReader(r io.ReadCloser, limit int64) *limitedReader {
	return &limitedReader{reader: r, remaining: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrResponseTooLarge
	}
	n, err := l.reader.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrResponseTooLarge
	}
	return n, err
}

func (l *limitedReader) Close() error {
	return l.reader.Close()
}

// isRetryableStatus returns true if the HTTP status code is retryable.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
