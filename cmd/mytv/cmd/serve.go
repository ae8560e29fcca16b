package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	internalhttp "github.com/Jash-k/MyTVStremioAddon/internal/http"
	"github.com/Jash-k/MyTVStremioAddon/internal/http/handlers"
	"github.com/Jash-k/MyTVStremioAddon/internal/scheduler"
	"github.com/Jash-k/MyTVStremioAddon/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the addon server",
	Long: `Start the addon HTTP server.

The server provides:
- Addon manifest, catalog and stream endpoints
- HLS manifest proxy at /hls/{id}/playlist.m3u8 and byte proxy at /proxy/{id}
- Playlist export at /playlist.m3u
- Health checks at /health, /livez and /readyz, and metrics at /metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Host to bind to (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides server.port)")
	serveCmd.Flags().String("public-url", "", "Externally visible base URL (overrides server.public_url)")
	serveCmd.Flags().String("playlist-url", "", "Upstream M3U playlist URL (overrides playlist.url)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	flags := cmd.Flags()
	if v, ok := stringFlag(flags, "host"); ok {
		cfg.Server.Host = v
	}
	if v, ok := intFlag(flags, "port"); ok {
		cfg.Server.Port = v
	}
	if v, ok := stringFlag(flags, "public-url"); ok {
		cfg.Server.PublicURL = v
	}
	if v, ok := stringFlag(flags, "playlist-url"); ok {
		cfg.Playlist.URL = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger := slog.Default()
	a := newApp(cfg, logger)

	serverConfig := internalhttp.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.PublicURL = cfg.Server.PublicURL
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout

	server := internalhttp.NewServer(serverConfig, logger, version.Version,
		internalhttp.WithMetrics(a.metrics, a.registry))

	sched := scheduler.NewScheduler(scheduler.Config{
		RefreshCron:   cfg.Scheduler.RefreshCron,
		KeepAliveCron: cfg.Scheduler.KeepAliveCron,
		KeepAliveURL:  cfg.Scheduler.KeepAliveURL,
	}, a.catalog, a.clients.Get(clientKeepAlive)).WithLogger(logger)

	handlers.NewAddonHandler(a.addon).
		WithLogger(logger).
		Register(server.API())
	handlers.NewHealthHandler(version.Version).
		WithCatalog(a.catalog).
		WithManifestCache(a.manifests).
		WithClients(a.clients).
		WithScheduler(sched).
		Register(server.API())
	handlers.NewHLSHandler(a.manifests).
		WithLogger(logger).
		RegisterChiRoutes(server.Router())
	handlers.NewProxyHandler(a.proxy).
		WithLogger(logger).
		RegisterChiRoutes(server.Router())
	handlers.NewExportHandler(a.catalog).
		WithLogger(logger).
		RegisterChiRoutes(server.Router())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Build the first catalog in the background so the listener is up at once.
	go func() {
		if _, err := a.catalog.Refresh(ctx); err != nil {
			logger.Warn("initial catalog build failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("starting mytv server",
		slog.String("address", cfg.Server.Address()),
		slog.String("public_url", cfg.Server.PublicURL),
		slog.String("playlist_url", cfg.Playlist.URL),
		slog.String("version", version.Version),
	)

	return server.ListenAndServe(ctx)
}
