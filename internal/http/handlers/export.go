package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/classify"
	"github.com/Jash-k/MyTVStremioAddon/pkg/m3u"
)

// CatalogSource provides the current channel catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) *catalog.Catalog
}

// ExportHandler re-emits the current catalog as an extended M3U playlist.
type ExportHandler struct {
	source CatalogSource
	logger *slog.Logger
}

// NewExportHandler creates a new playlist export handler.
func NewExportHandler(source CatalogSource) *ExportHandler {
	return &ExportHandler{source: source, logger: slog.Default()}
}

// WithLogger sets the logger.
func (h *ExportHandler) WithLogger(logger *slog.Logger) *ExportHandler {
	h.logger = logger
	return h
}

// RegisterChiRoutes registers the export route as a raw chi handler.
func (h *ExportHandler) RegisterChiRoutes(router chi.Router) {
	router.Get("/playlist.m3u", h.handleExport)
}

// handleExport writes the catalog in priority order. An optional
// ?category= query restricts it to one category.
func (h *ExportHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var category classify.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, ok := classify.ParseCategory(raw)
		if !ok {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}
		category = c
	}

	channels := h.source.Catalog(ctx).Filter(category)

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Content-Disposition", `inline; filename="playlist.m3u"`)
	w.Header().Set("Cache-Control", "no-cache")

	mw := m3u.NewWriter(w)
	if err := mw.WriteHeader(); err != nil {
		return
	}
	for _, ch := range channels {
		if err := mw.WriteEntry(ExportEntry(ch)); err != nil {
			h.logger.DebugContext(ctx, "playlist export aborted", slog.String("error", err.Error()))
			return
		}
	}
}

// ExportEntry converts a channel back into a playlist entry.
func ExportEntry(ch catalog.Channel) *m3u.Entry {
	return &m3u.Entry{
		Duration:   -1,
		TvgID:      ch.TvgID,
		TvgName:    ch.DisplayName,
		TvgLogo:    ch.LogoURL,
		GroupTitle: ch.GroupLabel,
		Title:      ch.DisplayName,
		URL:        ch.OriginURL,
	}
}
