package addon

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/classify"
	"github.com/Jash-k/MyTVStremioAddon/internal/idcodec"
	"github.com/Jash-k/MyTVStremioAddon/internal/urlutil"
)

const (
	// AllCatalogID lists every channel.
	AllCatalogID = "tamil-all"

	// PageSize is the number of metas per catalog page.
	PageSize = 100

	// DefaultVersion is reported when the build carries no release version.
	DefaultVersion = "2.0.0"
)

// CatalogSource supplies the current channel catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) *catalog.Catalog
}

// Options configures the addon surface.
type Options struct {
	ID          string
	Name        string
	Version     string
	Description string
	IDPrefix    string
	EnableLogos bool
	// HLSProxy adds a same-origin candidate to stream responses.
	HLSProxy bool
}

// Service answers manifest, catalog and stream requests. Every failure
// resolves to an empty result; nothing here returns an error to the caller.
type Service struct {
	source CatalogSource
	codec  idcodec.Codec
	opts   Options
	logger *slog.Logger
}

// NewService creates a Service over source.
func NewService(source CatalogSource, opts Options) *Service {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Description == "" {
		opts.Description = "Tamil Live TV - 200+ Channels"
	}
	return &Service{
		source: source,
		codec:  idcodec.New(opts.IDPrefix),
		opts:   opts,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	s.logger = logger
	return s
}

// Codec returns the id codec used for channel ids.
func (s *Service) Codec() idcodec.Codec {
	return s.codec
}

// CatalogID returns the catalog id listing category.
func CatalogID(category classify.Category) string {
	return "tamil-" + strings.ToLower(string(category))
}

// categoryFor maps a catalog id to its category filter. The all-channels
// catalog maps to the empty category.
func categoryFor(id string) (classify.Category, bool) {
	if id == AllCatalogID {
		return "", true
	}
	name, ok := strings.CutPrefix(id, "tamil-")
	if !ok {
		return "", false
	}
	return classify.ParseCategory(name)
}

// Manifest returns the addon manifest.
func (s *Service) Manifest() Manifest {
	extra := []ExtraDef{{Name: "search"}, {Name: "skip"}}

	catalogs := []CatalogDef{{Type: ContentType, ID: AllCatalogID, Name: "All Channels", Extra: extra}}
	for _, c := range classify.Categories {
		catalogs = append(catalogs, CatalogDef{
			Type:  ContentType,
			ID:    CatalogID(c),
			Name:  string(c),
			Extra: extra,
		})
	}

	return Manifest{
		ID:          s.opts.ID,
		Version:     s.opts.Version,
		Name:        s.opts.Name,
		Description: s.opts.Description,
		Types:       []string{ContentType},
		Catalogs:    catalogs,
		Resources:   []string{"catalog", "stream"},
		IDPrefixes:  []string{s.codec.Prefix},
	}
}

// Extra holds the optional catalog arguments.
type Extra struct {
	Search string
	Skip   int
}

// ParseExtra parses the extra path segment, such as "search=sun&skip=100".
// Unparseable values are ignored.
func ParseExtra(raw string) Extra {
	raw = strings.TrimSuffix(raw, ".json")
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Extra{}
	}
	extra := Extra{Search: strings.TrimSpace(values.Get("search"))}
	if n, err := strconv.Atoi(values.Get("skip")); err == nil && n > 0 {
		extra.Skip = n
	}
	return extra
}

// Catalog lists the metas of catalog id, filtered by extra.Search and
// paged from extra.Skip. Unknown types or ids give an empty list.
func (s *Service) Catalog(ctx context.Context, contentType, id string, extra Extra) []Meta {
	metas := []Meta{}
	if contentType != ContentType {
		return metas
	}
	category, ok := categoryFor(id)
	if !ok {
		s.logger.DebugContext(ctx, "unknown catalog", slog.String("catalog", id))
		return metas
	}

	channels := catalog.Search(s.source.Catalog(ctx).Filter(category), extra.Search)
	if extra.Skip >= len(channels) {
		return metas
	}
	channels = channels[extra.Skip:]
	channels = channels[:min(len(channels), PageSize)]

	for _, ch := range channels {
		metas = append(metas, s.meta(ch))
	}
	return metas
}

func (s *Service) meta(ch catalog.Channel) Meta {
	m := Meta{
		ID:          s.codec.Encode(ch.OriginURL),
		Type:        ContentType,
		Name:        ch.CleanName,
		Genres:      []string{string(ch.Category)},
		Description: fmt.Sprintf("%s (%s)", ch.Category, ch.Quality),
	}
	if s.opts.EnableLogos && ch.LogoURL != "" {
		m.Poster = ch.LogoURL
		m.PosterShape = "square"
		m.Logo = ch.LogoURL
	}
	return m
}

// Streams resolves channel id to playable candidates: the origin URL first,
// then, when the proxy is enabled and baseURL is known, a same-origin URL.
// Playlist origins get the rewriting manifest proxy; anything else gets the
// byte passthrough proxy.
func (s *Service) Streams(ctx context.Context, contentType, id, baseURL string) []Stream {
	streams := []Stream{}
	if contentType != ContentType || !s.codec.Owns(id) {
		return streams
	}

	origin, err := s.codec.Decode(id)
	if err != nil {
		s.logger.WarnContext(ctx, "unresolvable stream id", slog.String("id", id), slog.String("error", err.Error()))
		return streams
	}
	if !urlutil.IsAbsolute(origin) {
		s.logger.WarnContext(ctx, "stream id does not hold a URL", slog.String("id", id))
		return streams
	}

	streams = append(streams, Stream{URL: origin, Name: s.opts.Name, Title: "Play"})

	if s.opts.HLSProxy && baseURL != "" {
		if urlutil.HasPlaylistPath(origin) {
			streams = append(streams, Stream{
				URL:   HLSURL(baseURL, origin),
				Name:  s.opts.Name,
				Title: "Play (stabilised)",
			})
		} else {
			streams = append(streams, Stream{
				URL:           ProxyURL(baseURL, origin),
				Name:          s.opts.Name,
				Title:         "Play (proxy)",
				BehaviorHints: &StreamHints{NotWebReady: true},
			})
		}
	}
	return streams
}

// HLSURL is the manifest proxy URL for origin.
func HLSURL(baseURL, origin string) string {
	return urlutil.JoinPath(baseURL, "/hls/"+idcodec.Encode(origin)+"/playlist.m3u8")
}

// ProxyURL is the passthrough proxy URL for origin.
func ProxyURL(baseURL, origin string) string {
	return urlutil.JoinPath(baseURL, "/proxy/"+idcodec.Encode(origin))
}
