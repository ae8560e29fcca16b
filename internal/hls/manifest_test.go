package hls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash-k/MyTVStremioAddon/internal/testutil"
)

const (
	masterFive = testutil.MasterManifest
	mediaBasic = testutil.MediaManifest
)

func TestInspect(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		shape    Shape
		variants int
		wantErr  bool
	}{
		{name: "master", body: masterFive, shape: ShapeMaster, variants: 5},
		{name: "media", body: mediaBasic, shape: ShapeMedia},
		{name: "header only", body: "#EXTM3U\n#EXT-X-VERSION:3\n", shape: ShapeOther},
		{name: "leading whitespace", body: "\r\n" + mediaBasic, shape: ShapeMedia},
		{
			name:     "lenient master without version",
			body:     "#EXTM3U\n#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=800\nlow.m3u8\n",
			shape:    ShapeMaster,
			variants: 1,
		},
		{
			name:  "lenient media with oversized segment",
			body:  "#EXTM3U\n#EXT-X-TARGETDURATION:2\n#EXTINF:9.0,\na.ts\n",
			shape: ShapeMedia,
		},
		{name: "html error page", body: "<html>Forbidden</html>", wantErr: true},
		{name: "empty", body: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := inspect([]byte(tt.body))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotManifest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.shape, info.shape)
			assert.Len(t, info.variants, tt.variants)
		})
	}
}

func TestInspect_MasterVariants(t *testing.T) {
	info, err := inspect([]byte(masterFive))
	require.NoError(t, err)
	require.Len(t, info.variants, 5)
	assert.Equal(t, Variant{Bandwidth: 2500, URI: "v2500/index.m3u8"}, info.variants[0])
}

func TestSelectVariant(t *testing.T) {
	variants := func(bws ...int) []Variant {
		out := make([]Variant, 0, len(bws))
		for i, bw := range bws {
			out = append(out, Variant{Bandwidth: bw, URI: string(rune('a' + i))})
		}
		return out
	}

	tests := []struct {
		name    string
		in      []Variant
		wantBW  int
		wantURI string
	}{
		{name: "five unsorted", in: variants(2500, 500, 1500, 1000, 2000), wantBW: 1500, wantURI: "c"},
		{name: "single", in: variants(800), wantBW: 800, wantURI: "a"},
		{name: "two picks higher", in: variants(900, 300), wantBW: 900, wantURI: "a"},
		{name: "four picks index two", in: variants(100, 200, 300, 400), wantBW: 300, wantURI: "c"},
		{name: "ties keep listed order", in: variants(100, 500, 500, 500), wantBW: 500, wantURI: "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectVariant(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.wantBW, got.Bandwidth)
			assert.Equal(t, tt.wantURI, got.URI)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, ok := SelectVariant(nil)
		assert.False(t, ok)
	})

	t.Run("input untouched", func(t *testing.T) {
		in := variants(3, 1, 2)
		SelectVariant(in)
		assert.Equal(t, 3, in[0].Bandwidth)
	})
}
