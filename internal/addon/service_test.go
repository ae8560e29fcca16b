package addon

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/idcodec"
	"github.com/Jash-k/MyTVStremioAddon/internal/testutil"
)

type staticSource struct {
	cat *catalog.Catalog
}

func (s staticSource) Catalog(context.Context) *catalog.Catalog { return s.cat }

func sampleCatalog(t *testing.T, playlist string) *catalog.Catalog {
	t.Helper()
	channels, _, err := catalog.Build(strings.NewReader(playlist), 0)
	require.NoError(t, err)
	return &catalog.Catalog{Channels: channels}
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.IDPrefix == "" {
		opts.IDPrefix = "tamil:"
	}
	if opts.Name == "" {
		opts.Name = "FREE LIV TV"
	}
	return NewService(staticSource{sampleCatalog(t, testutil.SamplePlaylist)}, opts)
}

func TestManifest(t *testing.T) {
	svc := newTestService(t, Options{ID: "org.freelivtv.tamil"})
	m := svc.Manifest()

	assert.Equal(t, "org.freelivtv.tamil", m.ID)
	assert.Equal(t, DefaultVersion, m.Version)
	assert.Equal(t, []string{"tv"}, m.Types)
	assert.Equal(t, []string{"catalog", "stream"}, m.Resources)
	assert.Equal(t, []string{"tamil:"}, m.IDPrefixes)
	assert.False(t, m.BehaviorHints.Adult)

	ids := make([]string, 0, len(m.Catalogs))
	for _, c := range m.Catalogs {
		ids = append(ids, c.ID)
		assert.Equal(t, "tv", c.Type)
	}
	assert.Equal(t, []string{
		"tamil-all",
		"tamil-cricket",
		"tamil-movies",
		"tamil-news",
		"tamil-music",
		"tamil-kids",
		"tamil-devotional",
		"tamil-entertainment",
	}, ids)
}

func TestCatalog(t *testing.T) {
	svc := newTestService(t, Options{EnableLogos: true})
	ctx := context.Background()

	all := svc.Catalog(ctx, "tv", AllCatalogID, Extra{})
	require.Len(t, all, 6)
	assert.Equal(t, "Sun TV HD", all[0].Name)
	assert.Equal(t, "tamil:"+idcodec.Encode("https://streams.example/sun/index.m3u8"), all[0].ID)
	assert.Equal(t, "https://logos.example/sun.png", all[0].Poster)
	assert.Equal(t, "https://logos.example/sun.png", all[0].Logo)
	assert.Equal(t, []string{"Entertainment"}, all[0].Genres)
	assert.Equal(t, "Entertainment (HD)", all[0].Description)

	cricket := svc.Catalog(ctx, "tv", "tamil-cricket", Extra{})
	require.Len(t, cricket, 1)
	assert.Equal(t, "Star Sports 1 FHD", cricket[0].Name)
	assert.Empty(t, cricket[0].Poster)

	assert.Empty(t, svc.Catalog(ctx, "movie", AllCatalogID, Extra{}))
	assert.Empty(t, svc.Catalog(ctx, "tv", "tamil-unknown", Extra{}))
	assert.Empty(t, svc.Catalog(ctx, "tv", "other-all", Extra{}))
	assert.NotNil(t, svc.Catalog(ctx, "tv", "nope", Extra{}))
}

func TestCatalog_LogosDisabled(t *testing.T) {
	svc := newTestService(t, Options{EnableLogos: false})
	metas := svc.Catalog(context.Background(), "tv", AllCatalogID, Extra{})
	require.NotEmpty(t, metas)
	assert.Empty(t, metas[0].Poster)
}

func TestCatalog_SearchAndSkip(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	found := svc.Catalog(ctx, "tv", AllCatalogID, Extra{Search: "NEWS"})
	require.Len(t, found, 1)
	assert.Equal(t, "Thanthi News", found[0].Name)

	assert.Len(t, svc.Catalog(ctx, "tv", AllCatalogID, Extra{Skip: 4}), 2)
	assert.Empty(t, svc.Catalog(ctx, "tv", AllCatalogID, Extra{Skip: 6}))
}

func TestCatalog_Paging(t *testing.T) {
	samples := testutil.NewPlaylistGenerator().Generate(250, testutil.GenerateOptions{})
	svc := NewService(staticSource{sampleCatalog(t, testutil.Playlist(samples))}, Options{IDPrefix: "tamil:"})
	ctx := context.Background()

	assert.Len(t, svc.Catalog(ctx, "tv", AllCatalogID, Extra{}), PageSize)
	assert.Len(t, svc.Catalog(ctx, "tv", AllCatalogID, Extra{Skip: 100}), PageSize)
	assert.Len(t, svc.Catalog(ctx, "tv", AllCatalogID, Extra{Skip: 200}), 50)
}

func TestParseExtra(t *testing.T) {
	tests := []struct {
		raw  string
		want Extra
	}{
		{"", Extra{}},
		{"search=sun", Extra{Search: "sun"}},
		{"search=sun%20tv.json", Extra{Search: "sun tv"}},
		{"skip=100", Extra{Skip: 100}},
		{"skip=-5", Extra{}},
		{"skip=abc&search=x", Extra{Search: "x"}},
		{"genre=Movies&skip=200", Extra{Skip: 200}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseExtra(tt.raw), tt.raw)
	}
}

func TestStreams(t *testing.T) {
	const base = "https://addon.example"
	origin := "https://x/live.m3u8"
	id := "tamil:" + idcodec.Encode(origin)
	ctx := context.Background()

	t.Run("origin only without proxy", func(t *testing.T) {
		svc := newTestService(t, Options{})
		streams := svc.Streams(ctx, "tv", id, base)
		require.Len(t, streams, 1)
		assert.Equal(t, origin, streams[0].URL)
		assert.Equal(t, "Play", streams[0].Title)
	})

	t.Run("playlist origin gets manifest proxy", func(t *testing.T) {
		svc := newTestService(t, Options{HLSProxy: true})
		streams := svc.Streams(ctx, "tv", id, base+"/")
		require.Len(t, streams, 2)
		assert.Equal(t, origin, streams[0].URL)
		assert.Equal(t, fmt.Sprintf("%s/hls/%s/playlist.m3u8", base, idcodec.Encode(origin)), streams[1].URL)
	})

	t.Run("other origin gets passthrough proxy", func(t *testing.T) {
		svc := newTestService(t, Options{HLSProxy: true})
		ts := "http://x/stream/123.ts"
		streams := svc.Streams(ctx, "tv", "tamil:"+idcodec.Encode(ts), base)
		require.Len(t, streams, 2)
		assert.Equal(t, base+"/proxy/"+idcodec.Encode(ts), streams[1].URL)
		require.NotNil(t, streams[1].BehaviorHints)
		assert.True(t, streams[1].BehaviorHints.NotWebReady)
	})

	t.Run("no base url", func(t *testing.T) {
		svc := newTestService(t, Options{HLSProxy: true})
		assert.Len(t, svc.Streams(ctx, "tv", id, ""), 1)
	})

	t.Run("failures are empty", func(t *testing.T) {
		svc := newTestService(t, Options{HLSProxy: true})
		for _, tc := range []struct{ typ, id string }{
			{"movie", id},
			{"tv", idcodec.Encode(origin)},
			{"tv", "other:" + idcodec.Encode(origin)},
			{"tv", "tamil:!!!"},
			{"tv", "tamil:"},
			{"tv", "tamil:" + idcodec.Encode("not a url")},
		} {
			streams := svc.Streams(ctx, tc.typ, tc.id, base)
			assert.NotNil(t, streams)
			assert.Empty(t, streams, "%s %s", tc.typ, tc.id)
		}
	})
}
