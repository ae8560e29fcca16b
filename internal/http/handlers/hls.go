package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jash-k/MyTVStremioAddon/internal/hls"
)

// ManifestSource produces stabilised manifests for channel ids.
type ManifestSource interface {
	Manifest(ctx context.Context, id string) string
}

// HLSHandler serves rewritten HLS manifests.
type HLSHandler struct {
	manifests ManifestSource
	logger    *slog.Logger
}

// NewHLSHandler creates a new HLS manifest handler.
func NewHLSHandler(manifests ManifestSource) *HLSHandler {
	return &HLSHandler{manifests: manifests, logger: slog.Default()}
}

// WithLogger sets the logger.
func (h *HLSHandler) WithLogger(logger *slog.Logger) *HLSHandler {
	h.logger = logger
	return h
}

// RegisterChiRoutes registers the manifest route as a raw chi handler so the
// body is written verbatim with the playlist media type.
func (h *HLSHandler) RegisterChiRoutes(router chi.Router) {
	router.Get("/hls/{id}/playlist.m3u8", h.handleManifest)
	router.Options("/hls/{id}/playlist.m3u8", handleStreamOptions)
}

// handleManifest always answers 200 with a syntactically valid manifest.
// Upstream failures and undecodable ids yield the empty manifest.
func (h *HLSHandler) handleManifest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body := h.manifests.Manifest(r.Context(), id)

	SetDefaultCORSHeaders(w)
	w.Header().Set("Content-Type", hls.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, body); err != nil {
		h.logger.DebugContext(r.Context(), "manifest write failed", slog.String("error", err.Error()))
	}
}
