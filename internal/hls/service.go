package hls

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jash-k/MyTVStremioAddon/internal/cache"
	"github.com/Jash-k/MyTVStremioAddon/internal/idcodec"
	"github.com/Jash-k/MyTVStremioAddon/internal/metrics"
)

// Service answers manifest requests by encoded stream id, caching rewritten
// manifests (including the empty fallback) for a short TTL.
type Service struct {
	engine  *Engine
	codec   idcodec.Codec
	cache   *cache.Bounded[string]
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithServiceMetrics records cache lookups and evictions into m.
func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service holding at most maxEntries manifests for ttl.
// Ids carrying codec's namespace prefix are accepted alongside bare ids.
func NewService(engine *Engine, codec idcodec.Codec, ttl time.Duration, maxEntries int, opts ...ServiceOption) *Service {
	s := &Service{
		engine: engine,
		codec:  codec,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = cache.NewBounded[string](ttl, maxEntries, cache.WithEvictHook(func(string) {
		s.metrics.ManifestEvicted()
	}))
	return s
}

// Manifest returns the manifest for id. It never fails: undecodable ids and
// upstream problems yield EmptyManifest.
func (s *Service) Manifest(ctx context.Context, id string) string {
	if s.codec.Prefix != "" && s.codec.Owns(id) {
		id = id[len(s.codec.Prefix):]
	}

	originURL, err := idcodec.Decode(id)
	if err != nil {
		s.logger.WarnContext(ctx, "invalid manifest id", slog.String("id", id), slog.String("error", err.Error()))
		return EmptyManifest
	}

	body, hit, err := s.cache.GetOrLoad(ctx, id, func(ctx context.Context) (string, error) {
		return s.engine.Resolve(ctx, originURL), nil
	})
	s.metrics.ManifestLookup(hit)
	if err != nil || body == "" {
		return EmptyManifest
	}
	return body
}

// Cached returns the number of manifests currently held.
func (s *Service) Cached() int {
	return s.cache.Len()
}
