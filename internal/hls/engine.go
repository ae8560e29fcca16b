package hls

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Jash-k/MyTVStremioAddon/internal/metrics"
	"github.com/Jash-k/MyTVStremioAddon/internal/upstream"
	"github.com/Jash-k/MyTVStremioAddon/internal/urlutil"
)

// DefaultTargetDuration is the segment duration ceiling in seconds.
const DefaultTargetDuration = 6

// Fetcher retrieves a manifest body and the URL it was finally served from.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (upstream.Document, error)
}

// Engine turns an origin manifest URL into a rewritten media playlist.
type Engine struct {
	fetcher Fetcher
	target  int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewEngine creates an Engine. A target below 1 uses DefaultTargetDuration.
func NewEngine(fetcher Fetcher, target int) *Engine {
	if target < 1 {
		target = DefaultTargetDuration
	}
	return &Engine{
		fetcher: fetcher,
		target:  target,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger
	return e
}

// WithMetrics records resolution outcomes into m.
func (e *Engine) WithMetrics(m *metrics.Metrics) *Engine {
	e.metrics = m
	return e
}

// TargetDuration returns the configured segment duration ceiling.
func (e *Engine) TargetDuration() int {
	return e.target
}

// Rewrite fetches originURL and produces the manifest to serve. A master
// manifest is replaced by its selected variant's rewritten media playlist; a
// media playlist is rewritten directly; a playlist with neither variants nor
// segments is returned unchanged. Failures are *upstream.FetchError or
// *ParseError.
func (e *Engine) Rewrite(ctx context.Context, originURL string) (string, Shape, error) {
	doc, info, err := e.load(ctx, originURL)
	if err != nil {
		return "", ShapeEmpty, err
	}

	switch info.shape {
	case ShapeMedia:
		return RewriteMedia(string(doc.Body), doc.FinalURL, e.target), ShapeMedia, nil
	case ShapeOther:
		return string(doc.Body), ShapeOther, nil
	}

	variant, _ := SelectVariant(info.variants)
	variantURL := urlutil.Resolve(doc.FinalURL, variant.URI)
	e.logger.DebugContext(ctx, "selected variant",
		slog.String("master", originURL),
		slog.String("variant", variantURL),
		slog.Int("bandwidth", variant.Bandwidth),
		slog.Int("variants", len(info.variants)),
	)

	vdoc, vinfo, err := e.load(ctx, variantURL)
	if err != nil {
		return "", ShapeEmpty, err
	}

	switch vinfo.shape {
	case ShapeMaster:
		return "", ShapeEmpty, &ParseError{URL: variantURL, Err: errors.New("variant is itself a master playlist")}
	case ShapeOther:
		return string(vdoc.Body), ShapeOther, nil
	}
	return RewriteMedia(string(vdoc.Body), vdoc.FinalURL, e.target), ShapeMaster, nil
}

// Resolve is Rewrite with failures absorbed: any error yields EmptyManifest.
func (e *Engine) Resolve(ctx context.Context, originURL string) string {
	body, shape, err := e.Rewrite(ctx, originURL)
	if err != nil {
		e.logger.WarnContext(ctx, "manifest unavailable, serving empty playlist",
			slog.String("url", originURL),
			slog.String("error", err.Error()),
		)
		e.metrics.ManifestResolved(string(ShapeEmpty))
		return EmptyManifest
	}
	e.metrics.ManifestResolved(string(shape))
	return body
}

func (e *Engine) load(ctx context.Context, url string) (upstream.Document, inspection, error) {
	doc, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return upstream.Document{}, inspection{}, err
	}
	if doc.FinalURL == "" {
		doc.FinalURL = url
	}
	info, err := inspect(doc.Body)
	if err != nil {
		return upstream.Document{}, inspection{}, &ParseError{URL: url, Err: err}
	}
	return doc, info, nil
}
