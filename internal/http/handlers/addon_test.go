package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash-k/MyTVStremioAddon/internal/addon"
	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/http/middleware"
	"github.com/Jash-k/MyTVStremioAddon/internal/testutil"
)

const testBaseURL = "https://addon.example"

type staticSource struct {
	cat *catalog.Catalog
}

func (s staticSource) Catalog(context.Context) *catalog.Catalog { return s.cat }

func sampleSource(t *testing.T) staticSource {
	t.Helper()
	channels, _, err := catalog.Build(strings.NewReader(testutil.SamplePlaylist), 0)
	require.NoError(t, err)
	return staticSource{cat: &catalog.Catalog{Channels: channels}}
}

func newAddonRouter(t *testing.T, source staticSource) (*chi.Mux, *addon.Service) {
	t.Helper()
	svc := addon.NewService(source, addon.Options{
		ID:       "org.freelivtv.tamil",
		Name:     "FREE LIV TV",
		IDPrefix: "tamil:",
		HLSProxy: true,
	})

	router := chi.NewRouter()
	router.Use(middleware.BaseURL(testBaseURL))
	config := huma.DefaultConfig("test", "1.0.0")
	config.CreateHooks = nil
	api := humachi.New(router, config)
	NewAddonHandler(svc).Register(api)
	return router, svc
}

func getJSON(t *testing.T, h http.Handler, path string, into any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if into != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into), rec.Body.String())
	}
	return rec
}

func TestAddonHandler_Manifest(t *testing.T) {
	router, _ := newAddonRouter(t, sampleSource(t))

	var m addon.Manifest
	rec := getJSON(t, router, "/manifest.json", &m)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "org.freelivtv.tamil", m.ID)
	assert.Equal(t, []string{"tamil:"}, m.IDPrefixes)
	assert.Equal(t, addon.AllCatalogID, m.Catalogs[0].ID)
	assert.NotContains(t, rec.Body.String(), "$schema")
}

func TestAddonHandler_Catalog(t *testing.T) {
	router, _ := newAddonRouter(t, sampleSource(t))

	t.Run("all channels in priority order", func(t *testing.T) {
		var body CatalogBody
		rec := getJSON(t, router, "/catalog/tv/tamil-all.json", &body)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, body.Metas, 6)
		assert.Equal(t, "Sun TV HD", body.Metas[0].Name)
		assert.NotEmpty(t, rec.Header().Get("Cache-Control"))
	})

	t.Run("category catalog", func(t *testing.T) {
		var body CatalogBody
		getJSON(t, router, "/catalog/tv/tamil-cricket.json", &body)
		require.Len(t, body.Metas, 1)
		assert.Equal(t, []string{"Cricket"}, body.Metas[0].Genres)
	})

	t.Run("search extra", func(t *testing.T) {
		var body CatalogBody
		getJSON(t, router, "/catalog/tv/tamil-all/search=thanthi.json", &body)
		require.Len(t, body.Metas, 1)
		assert.Equal(t, "Thanthi News", body.Metas[0].Name)
	})

	t.Run("escaped search extra", func(t *testing.T) {
		var body CatalogBody
		getJSON(t, router, "/catalog/tv/tamil-all/search=isai%20aruvi.json", &body)
		require.Len(t, body.Metas, 1)
	})

	t.Run("skip past the end", func(t *testing.T) {
		var body CatalogBody
		rec := getJSON(t, router, "/catalog/tv/tamil-all/skip=100.json", &body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, body.Metas)
		assert.Contains(t, rec.Body.String(), `"metas":[]`)
	})

	t.Run("unknown catalog is empty", func(t *testing.T) {
		var body CatalogBody
		rec := getJSON(t, router, "/catalog/movie/tamil-all.json", &body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, body.Metas)
	})
}

func TestAddonHandler_Streams(t *testing.T) {
	source := sampleSource(t)
	router, svc := newAddonRouter(t, source)
	origin := source.cat.Channels[0].OriginURL
	id := svc.Codec().Encode(origin)

	var body StreamBody
	rec := getJSON(t, router, "/stream/tv/"+id+".json", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Streams, 2)
	assert.Equal(t, origin, body.Streams[0].URL)
	assert.Equal(t, addon.HLSURL(testBaseURL, origin), body.Streams[1].URL)
	assert.True(t, strings.HasPrefix(body.Streams[1].URL, testBaseURL+"/hls/"))

	t.Run("undecodable id", func(t *testing.T) {
		var body StreamBody
		rec := getJSON(t, router, "/stream/tv/tamil:%25%25%25.json", &body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, body.Streams)
	})
}

func TestPathParam(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"tamil-all.json", "tamil-all"},
		{"tamil-all", "tamil-all"},
		{"search=sun%20tv.json", "search=sun tv"},
		{"bad%zz.json", "bad%zz"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, pathParam(tt.raw))
		})
	}
}
