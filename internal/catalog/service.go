package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jash-k/MyTVStremioAddon/internal/cache"
	"github.com/Jash-k/MyTVStremioAddon/internal/metrics"
	"github.com/Jash-k/MyTVStremioAddon/internal/observability"
	"github.com/Jash-k/MyTVStremioAddon/internal/upstream"
)

// ErrNoEntries is returned by an ingestion whose playlist body held no
// #EXTINF entries at all, which usually means an error page was served.
var ErrNoEntries = errors.New("playlist contained no entries")

// Fetcher retrieves the playlist document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (upstream.Document, error)
}

// Options configures a Service.
type Options struct {
	// PlaylistURL is the upstream extended-M3U playlist.
	PlaylistURL string
	// TTL is how long a built catalog is served without re-ingesting.
	TTL time.Duration
	// MaxChannels caps the number of distinct channels kept, in playlist order.
	MaxChannels int
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Service owns the process-wide catalog. Reads within the TTL do no I/O;
// concurrent reads after expiry share one ingestion; a failed ingestion
// serves the last good catalog, or Empty if there never was one.
type Service struct {
	fetcher     Fetcher
	playlistURL string
	maxChannels int
	now         func() time.Time
	value       *cache.Value[*Catalog]
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewService creates a Service. Nothing is fetched until the first read.
func NewService(fetcher Fetcher, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Service{
		fetcher:     fetcher,
		playlistURL: opts.PlaylistURL,
		maxChannels: opts.MaxChannels,
		now:         now,
		logger:      slog.Default(),
	}
	s.value = cache.NewValue(opts.TTL, s.ingest,
		cache.WithClock[*Catalog](now),
		cache.WithEmpty(Empty),
	)
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	s.logger = logger
	return s
}

// WithMetrics records lookups and ingestions into m.
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Catalog returns the current catalog. It never fails; ingestion errors are
// logged and absorbed into the stale or empty fallback.
func (s *Service) Catalog(ctx context.Context) *Catalog {
	cat, state, err := s.value.Get(ctx)
	s.metrics.CatalogLookup(state.String())
	if err != nil {
		s.logger.WarnContext(ctx, "catalog refresh failed, serving fallback",
			slog.String("fallback", state.String()),
			slog.Int("channels", cat.Len()),
			slog.String("error", err.Error()),
		)
	}
	return cat
}

// Refresh re-ingests the playlist even if the catalog is fresh. On failure
// the previous catalog stays in place and the error is returned.
func (s *Service) Refresh(ctx context.Context) (*Catalog, error) {
	cat, state, err := s.value.Refresh(ctx)
	s.metrics.CatalogLookup(state.String())
	return cat, err
}

// Snapshot describes the stored catalog for health reporting.
type Snapshot struct {
	Ready      bool          `json:"ready"`
	Generation string        `json:"generation,omitempty"`
	Channels   int           `json:"channels"`
	BuiltAt    time.Time     `json:"built_at,omitzero"`
	Age        time.Duration `json:"age"`
	Stale      bool          `json:"stale"`
}

// Snapshot reports on the stored catalog without triggering ingestion.
func (s *Service) Snapshot() Snapshot {
	entry, ok := s.value.Peek()
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Ready:      true,
		Generation: entry.Value.Generation.String(),
		Channels:   entry.Value.Len(),
		BuiltAt:    entry.Value.BuiltAt,
		Age:        s.now().Sub(entry.StoredAt),
		Stale:      !s.value.Fresh(),
	}
}

func (s *Service) ingest(ctx context.Context) (cat *Catalog, err error) {
	defer observability.TimedOperation(ctx, s.logger, "ingest_playlist", &err)()
	defer func() { s.metrics.CatalogRefreshed(cat.Len(), err) }()

	doc, err := s.fetcher.Fetch(ctx, s.playlistURL)
	if err != nil {
		return nil, err
	}

	channels, stats, err := Build(bytes.NewReader(doc.Body), s.maxChannels)
	if err != nil {
		return nil, err
	}
	if stats.Entries == 0 {
		return nil, fmt.Errorf("%s: %w", s.playlistURL, ErrNoEntries)
	}

	cat = newCatalog(channels, stats, s.now())
	s.logger.InfoContext(ctx, "catalog built",
		slog.String("generation", cat.Generation.String()),
		slog.Int("channels", len(channels)),
		slog.Int("entries", stats.Entries),
		slog.Int("excluded", stats.Excluded),
		slog.Int("duplicates", stats.Duplicates),
		slog.Bool("truncated", stats.Truncated),
	)
	return cat, nil
}
