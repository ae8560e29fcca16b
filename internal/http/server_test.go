package http

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash-k/MyTVStremioAddon/internal/addon"
	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/http/handlers"
	"github.com/Jash-k/MyTVStremioAddon/internal/idcodec"
	"github.com/Jash-k/MyTVStremioAddon/internal/metrics"
	"github.com/Jash-k/MyTVStremioAddon/internal/testutil"
)

type staticSource struct {
	cat *catalog.Catalog
}

func (s staticSource) Catalog(context.Context) *catalog.Catalog { return s.cat }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	channels, _, err := catalog.Build(strings.NewReader(testutil.SamplePlaylist), 0)
	require.NoError(t, err)
	source := staticSource{cat: &catalog.Catalog{Channels: channels}}

	reg := prometheus.NewRegistry()
	config := DefaultServerConfig()
	config.PublicURL = "https://addon.example"
	srv := NewServer(config, nil, "1.2.3", WithMetrics(metrics.New(reg), reg))

	svc := addon.NewService(source, addon.Options{Name: "FREE LIV TV", IDPrefix: "tamil:", HLSProxy: true})
	handlers.NewAddonHandler(svc).Register(srv.API())
	handlers.NewHealthHandler("1.2.3").Register(srv.API())
	handlers.NewExportHandler(source).RegisterChiRoutes(srv.Router())
	return srv
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Manifest(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/manifest.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"idPrefixes":["tamil:"]`)
}

func TestServer_RootRedirects(t *testing.T) {
	rec := do(t, newTestServer(t).Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/manifest.json", rec.Header().Get("Location"))
}

func TestServer_CompressesJSON(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/catalog/tv/tamil-all.json", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	rec := do(t, srv.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"metas":[`)
}

func TestServer_StreamsUsePublicURL(t *testing.T) {
	srv := newTestServer(t)
	encoded := idcodec.Encode("https://streams.example/sun/index.m3u8")

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/stream/tv/tamil:"+encoded+".json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://addon.example/hls/"+encoded+"/playlist.m3u8")
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mytv_http_request_duration_seconds_count{route="/health",status="200"} 1`)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	assert.NoError(t, newTestServer(t).Shutdown(context.Background()))
}
