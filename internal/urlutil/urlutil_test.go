package urlutil

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"no scheme", "tv.example.com", "http://tv.example.com"},
		{"https", "https://tv.example.com", "https://tv.example.com"},
		{"trailing slash", "http://tv.example.com/", "http://tv.example.com"},
		{"with port", "localhost:3000", "http://localhost:3000"},
		{"whitespace", "  http://tv.example.com  ", "http://tv.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBaseURL(tt.input))
		})
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "http://h/hls/x/playlist.m3u8", JoinPath("http://h/", "hls/x/playlist.m3u8"))
	assert.Equal(t, "http://h/hls", JoinPath("http://h", "/hls"))
	assert.Equal(t, "/hls", JoinPath("", "/hls"))
}

func TestIsAbsolute(t *testing.T) {
	assert.True(t, IsAbsolute("https://a.b/live/seg1.ts"))
	assert.True(t, IsAbsolute("http://a.b"))
	assert.False(t, IsAbsolute("seg1.ts"))
	assert.False(t, IsAbsolute("/live/seg1.ts"))
	assert.False(t, IsAbsolute("//cdn.a.b/seg1.ts"))
	assert.False(t, IsAbsolute(""))
}

func TestBaseOf(t *testing.T) {
	assert.Equal(t, "https://a.b/live/", BaseOf("https://a.b/live/index.m3u8"))
	assert.Equal(t, "https://a.b/live/", BaseOf("https://a.b/live/index.m3u8?token=a/b"))
	assert.Equal(t, "https://a.b/", BaseOf("https://a.b/index.m3u8"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"relative segment", "https://a.b/live/index.m3u8", "seg1.ts", "https://a.b/live/seg1.ts"},
		{"relative to directory base", "https://a.b/live/", "seg1.ts", "https://a.b/live/seg1.ts"},
		{"already absolute", "https://a.b/live/index.m3u8", "https://c.d/seg.ts", "https://c.d/seg.ts"},
		{"root relative", "https://a.b/live/index.m3u8", "/other/seg.ts", "https://a.b/other/seg.ts"},
		{"protocol relative", "https://a.b/live/index.m3u8", "//cdn.a.b/seg.ts", "https://cdn.a.b/seg.ts"},
		{"parent directory", "https://a.b/live/hd/index.m3u8", "../sd/index.m3u8", "https://a.b/live/sd/index.m3u8"},
		{"keeps ref query", "https://a.b/live/index.m3u8?t=1", "seg1.ts?t=2", "https://a.b/live/seg1.ts?t=2"},
		{"empty ref", "https://a.b/live/index.m3u8", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.base, tt.ref))
		})
	}
}

func TestHasPlaylistPath(t *testing.T) {
	assert.True(t, HasPlaylistPath("https://x/live.m3u8"))
	assert.True(t, HasPlaylistPath("https://x/live.M3U8?token=1"))
	assert.True(t, HasPlaylistPath("http://x/list.m3u"))
	assert.False(t, HasPlaylistPath("http://x/stream.ts"))
	assert.False(t, HasPlaylistPath("http://x/play?f=live.m3u8"))
}

func TestRequestBaseURL(t *testing.T) {
	r := httptest.NewRequest("GET", "http://addon.local:3000/stream/tv/x.json", nil)
	assert.Equal(t, "http://addon.local:3000", RequestBaseURL(r))

	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://addon.local:3000", RequestBaseURL(r))

	r = httptest.NewRequest("GET", "http://internal:3000/", nil)
	r.Header.Set("X-Forwarded-Proto", "https, http")
	r.Header.Set("X-Forwarded-Host", "tv.example.com")
	assert.Equal(t, "https://tv.example.com", RequestBaseURL(r))
}
