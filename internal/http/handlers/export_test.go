package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
)

func TestExportHandler(t *testing.T) {
	source := sampleSource(t)
	router := chi.NewRouter()
	NewExportHandler(source).RegisterChiRoutes(router)

	t.Run("whole catalog re-ingests identically", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/playlist.m3u")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "audio/x-mpegurl", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "#EXTM3U"))

		channels, stats, err := catalog.Build(strings.NewReader(rec.Body.String()), 0)
		require.NoError(t, err)
		assert.Equal(t, 6, stats.Included)
		assert.Equal(t, source.cat.Channels, channels)
	})

	t.Run("category filter", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/playlist.m3u?category=cricket")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, strings.Count(rec.Body.String(), "#EXTINF"))
		assert.Contains(t, rec.Body.String(), "Star Sports 1 FHD")
	})

	t.Run("unknown category", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/playlist.m3u?category=sports")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty catalog", func(t *testing.T) {
		router := chi.NewRouter()
		NewExportHandler(staticSource{}).RegisterChiRoutes(router)
		rec := serve(router, http.MethodGet, "/playlist.m3u")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "#EXTM3U\n", rec.Body.String())
	})
}
