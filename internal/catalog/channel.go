// Package catalog builds the channel catalog from the upstream playlist and
// keeps the current snapshot cached.
package catalog

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Jash-k/MyTVStremioAddon/internal/classify"
)

// Channel is one classified playlist entry. Channels are values; a new
// ingestion produces new Channels rather than editing existing ones.
type Channel struct {
	DisplayName string            `json:"display_name"`
	CleanName   string            `json:"name"`
	Category    classify.Category `json:"category"`
	Quality     classify.Quality  `json:"quality"`
	OriginURL   string            `json:"url"`
	LogoURL     string            `json:"logo,omitempty"`
	GroupLabel  string            `json:"group,omitempty"`
	TvgID       string            `json:"tvg_id,omitempty"`
	Priority    int               `json:"priority"`
}

// Catalog is one ingestion's result, ordered by ascending priority with
// playlist order kept among equal priorities. It is never modified after
// construction.
type Catalog struct {
	Generation ulid.ULID `json:"generation"`
	BuiltAt    time.Time `json:"built_at"`
	Channels   []Channel `json:"channels"`
	Stats      Stats     `json:"stats"`
}

// Stats counts what happened to playlist entries during ingestion.
type Stats struct {
	Entries    int  `json:"entries"`
	Included   int  `json:"included"`
	Excluded   int  `json:"excluded"`
	Duplicates int  `json:"duplicates"`
	Skipped    int  `json:"skipped_lines"`
	Truncated  bool `json:"truncated"`
}

// Empty is the catalog served before any ingestion has succeeded.
var Empty = &Catalog{}

func newCatalog(channels []Channel, stats Stats, now time.Time) *Catalog {
	return &Catalog{
		Generation: ulid.MustNew(ulid.Timestamp(now), rand.Reader),
		BuiltAt:    now,
		Channels:   channels,
		Stats:      stats,
	}
}

// Len returns the number of channels; a nil Catalog has none.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Channels)
}

// Filter returns the channels in category, in catalog order. An empty
// category returns every channel.
func (c *Catalog) Filter(category classify.Category) []Channel {
	if c == nil {
		return nil
	}
	if category == "" {
		return c.Channels
	}
	var out []Channel
	for _, ch := range c.Channels {
		if ch.Category == category {
			out = append(out, ch)
		}
	}
	return out
}

// Search narrows channels to those whose clean name contains query,
// ignoring case. A blank query returns channels unchanged.
func Search(channels []Channel, query string) []Channel {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return channels
	}
	var out []Channel
	for _, ch := range channels {
		if strings.Contains(strings.ToLower(ch.CleanName), query) {
			out = append(out, ch)
		}
	}
	return out
}

// CountByCategory returns the number of channels per category.
func (c *Catalog) CountByCategory() map[classify.Category]int {
	counts := make(map[classify.Category]int, len(classify.Categories))
	if c == nil {
		return counts
	}
	for _, ch := range c.Channels {
		counts[ch.Category]++
	}
	return counts
}
