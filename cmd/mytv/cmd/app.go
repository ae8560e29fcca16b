package cmd

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Jash-k/MyTVStremioAddon/internal/addon"
	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/config"
	"github.com/Jash-k/MyTVStremioAddon/internal/hls"
	"github.com/Jash-k/MyTVStremioAddon/internal/idcodec"
	"github.com/Jash-k/MyTVStremioAddon/internal/metrics"
	"github.com/Jash-k/MyTVStremioAddon/internal/observability"
	"github.com/Jash-k/MyTVStremioAddon/internal/upstream"
	"github.com/Jash-k/MyTVStremioAddon/internal/version"
	"github.com/Jash-k/MyTVStremioAddon/pkg/httpclient"
)

// app holds the wired services shared by the serve and catalog commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	clients  *httpclient.Registry

	catalog   *catalog.Service
	manifests *hls.Service
	addon     *addon.Service
	proxy     *upstream.Fetcher
}

// Upstream client names, as listed by /health.
const (
	clientPlaylist  = "playlist"
	clientManifest  = "manifest"
	clientProxy     = "proxy"
	clientKeepAlive = "keep-alive"
)

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)
	clients := httpclient.NewRegistry()

	newClient := func(name string, c httpclient.Config) *httpclient.Client {
		c.Logger = observability.WithComponent(logger, "httpclient").With(slog.String("client", name))
		client := httpclient.New(c)
		clients.Register(name, client)
		return client
	}

	playlistCfg := httpclient.DefaultConfig()
	playlistCfg.Timeout = cfg.Playlist.Timeout
	playlistCfg.RetryAttempts = 1
	playlistCfg.UserAgent = version.UserAgent()
	playlistFetcher := upstream.NewFetcher(newClient(clientPlaylist, playlistCfg),
		upstream.Headers{UserAgent: version.UserAgent()}, cfg.Playlist.Timeout).
		WithLogger(observability.WithComponent(logger, "upstream")).
		WithMetrics(m, "playlist")

	streamHeaders := upstream.Headers{
		UserAgent: cfg.Stream.UserAgent,
		Referer:   cfg.Stream.Referer,
	}

	manifestCfg := httpclient.DefaultConfig()
	manifestCfg.Timeout = cfg.Stream.Timeout
	manifestCfg.RetryAttempts = 1
	manifestCfg.RetryDelay = 250 * time.Millisecond
	manifestFetcher := upstream.NewFetcher(newClient(clientManifest, manifestCfg), streamHeaders, cfg.Stream.Timeout).
		WithLogger(observability.WithComponent(logger, "upstream")).
		WithMetrics(m, "manifest")

	// The passthrough proxy relays media bytes as-is for as long as the
	// viewer stays connected.
	proxyCfg := httpclient.DefaultConfig()
	proxyCfg.Timeout = 0
	proxyCfg.RetryAttempts = 0
	proxyCfg.EnableDecompression = false
	proxyFetcher := upstream.NewFetcher(newClient(clientProxy, proxyCfg), streamHeaders, cfg.Stream.Timeout).
		WithLogger(observability.WithComponent(logger, "upstream")).
		WithMetrics(m, "proxy")

	keepAliveCfg := httpclient.DefaultConfig()
	keepAliveCfg.Timeout = 10 * time.Second
	keepAliveCfg.RetryAttempts = 0
	keepAliveCfg.UserAgent = version.UserAgent()
	newClient(clientKeepAlive, keepAliveCfg)

	catalogSvc := catalog.NewService(playlistFetcher, catalog.Options{
		PlaylistURL: cfg.Playlist.URL,
		TTL:         cfg.Playlist.CacheTTL,
		MaxChannels: cfg.Playlist.MaxChannels,
	}).
		WithLogger(observability.WithComponent(logger, "catalog")).
		WithMetrics(m)

	engine := hls.NewEngine(manifestFetcher, cfg.Stream.TargetDuration).
		WithLogger(observability.WithComponent(logger, "hls")).
		WithMetrics(m)
	manifests := hls.NewService(engine, idcodec.New(cfg.Addon.IDPrefix),
		cfg.Stream.ManifestCacheTTL, cfg.Stream.MaxManifestEntries,
		hls.WithServiceLogger(observability.WithComponent(logger, "hls")),
		hls.WithServiceMetrics(m),
	)

	addonSvc := addon.NewService(catalogSvc, addon.Options{
		ID:          cfg.Addon.ID,
		Name:        cfg.Addon.Name,
		IDPrefix:    cfg.Addon.IDPrefix,
		EnableLogos: cfg.Addon.EnableLogos,
		HLSProxy:    cfg.Stream.HLSProxy,
	}).WithLogger(observability.WithComponent(logger, "addon"))

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		metrics:   m,
		clients:   clients,
		catalog:   catalogSvc,
		manifests: manifests,
		addon:     addonSvc,
		proxy:     proxyFetcher,
	}
}
