package testutil

import (
	"bytes"
	"fmt"
	"math/rand"

	"github.com/Jash-k/MyTVStremioAddon/pkg/m3u"
)

// Fictional broadcasters for generated playlists. Never use real brand names.
var (
	Broadcasters = []string{
		"Kaveri",
		"Vaigai",
		"Marina",
		"Thendral",
		"Kurinji",
		"Mullai",
		"Neidhal",
		"Palai",
	}

	QualityVariants = []string{"", "HD", "FHD", "4K"}

	// IncludedGroups are group labels the classifier accepts on their own.
	IncludedGroups = []string{
		"FREE LIV TV || TAMIL",
		"FREE LIV TV || TAMIL MOVIES",
		"FREE LIV TV || TAMIL NEWS",
		"FREE LIV TV || TAMIL MUSIC",
		"FREE LIV TV || CRICKET",
	}

	// ExcludedGroups never match an inclusion rule.
	ExcludedGroups = []string{"HINDI", "TELUGU", "ENGLISH", "SPORTS INTL"}
)

// SampleChannel is one generated playlist entry.
type SampleChannel struct {
	Name  string
	Group string
	Logo  string
	URL   string
}

// Entry converts the sample into a parser entry.
func (s SampleChannel) Entry() *m3u.Entry {
	return &m3u.Entry{
		Duration:   -1,
		TvgName:    s.Name,
		TvgLogo:    s.Logo,
		GroupTitle: s.Group,
		Title:      s.Name,
		URL:        s.URL,
	}
}

// PlaylistGenerator produces deterministic playlists from a seed.
type PlaylistGenerator struct {
	rng *rand.Rand
}

// NewPlaylistGenerator creates a generator with a fixed seed.
func NewPlaylistGenerator() *PlaylistGenerator {
	return NewPlaylistGeneratorWithSeed(42)
}

// NewPlaylistGeneratorWithSeed creates a generator with the given seed.
func NewPlaylistGeneratorWithSeed(seed int64) *PlaylistGenerator {
	return &PlaylistGenerator{rng: rand.New(rand.NewSource(seed))}
}

// GenerateOptions controls the generated mix.
type GenerateOptions struct {
	// ExcludedEvery inserts an entry from an excluded group every n entries.
	// Zero disables.
	ExcludedEvery int
	// DuplicateEvery repeats the previous URL every n entries. Zero disables.
	DuplicateEvery int
	// WithLogos sets a logo URL on every entry.
	WithLogos bool
}

// Generate returns count channels with unique URLs, apart from the
// duplicates requested in opts.
func (g *PlaylistGenerator) Generate(count int, opts GenerateOptions) []SampleChannel {
	channels := make([]SampleChannel, 0, count)
	for i := range count {
		ch := SampleChannel{
			Name:  g.name(i),
			Group: IncludedGroups[g.rng.Intn(len(IncludedGroups))],
			URL:   fmt.Sprintf("https://streams.example/ch%04d/index.m3u8", i),
		}
		if opts.ExcludedEvery > 0 && i%opts.ExcludedEvery == opts.ExcludedEvery-1 {
			ch.Group = ExcludedGroups[g.rng.Intn(len(ExcludedGroups))]
		}
		if opts.DuplicateEvery > 0 && i > 0 && i%opts.DuplicateEvery == 0 {
			ch.URL = channels[i-1].URL
		}
		if opts.WithLogos {
			ch.Logo = fmt.Sprintf("https://logos.example/ch%04d.png", i)
		}
		channels = append(channels, ch)
	}
	return channels
}

func (g *PlaylistGenerator) name(i int) string {
	name := fmt.Sprintf("%s %d", Broadcasters[g.rng.Intn(len(Broadcasters))], i)
	if q := QualityVariants[g.rng.Intn(len(QualityVariants))]; q != "" {
		name += " " + q
	}
	return name
}

// Playlist renders channels as extended M3U text.
func Playlist(channels []SampleChannel) string {
	var buf bytes.Buffer
	w := m3u.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		panic(err)
	}
	for _, ch := range channels {
		if err := w.WriteEntry(ch.Entry()); err != nil {
			panic(err)
		}
	}
	return buf.String()
}
