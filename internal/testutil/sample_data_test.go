package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistGenerator_Deterministic(t *testing.T) {
	a := NewPlaylistGeneratorWithSeed(7).Generate(20, GenerateOptions{})
	b := NewPlaylistGeneratorWithSeed(7).Generate(20, GenerateOptions{})
	assert.Equal(t, a, b)
}

func TestPlaylistGenerator_Options(t *testing.T) {
	channels := NewPlaylistGenerator().Generate(12, GenerateOptions{
		ExcludedEvery:  4,
		DuplicateEvery: 5,
		WithLogos:      true,
	})
	require.Len(t, channels, 12)

	assert.Contains(t, ExcludedGroups, channels[3].Group)
	assert.Contains(t, ExcludedGroups, channels[7].Group)
	assert.Contains(t, IncludedGroups, channels[0].Group)

	assert.Equal(t, channels[4].URL, channels[5].URL)
	assert.Equal(t, channels[9].URL, channels[10].URL)

	for _, ch := range channels {
		assert.NotEmpty(t, ch.Logo)
		assert.NotEmpty(t, ch.Name)
	}
}

func TestPlaylist(t *testing.T) {
	channels := []SampleChannel{
		{Name: "Kaveri 1 HD", Group: "FREE LIV TV || TAMIL MOVIES", URL: "https://streams.example/a.m3u8"},
	}
	text := Playlist(channels)

	assert.True(t, strings.HasPrefix(text, "#EXTM3U"))
	assert.Contains(t, text, `tvg-name="Kaveri 1 HD"`)
	assert.Contains(t, text, `group-title="FREE LIV TV || TAMIL MOVIES"`)
	assert.Contains(t, text, "https://streams.example/a.m3u8\n")
}
