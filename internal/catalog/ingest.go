package catalog

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Jash-k/MyTVStremioAddon/internal/classify"
	"github.com/Jash-k/MyTVStremioAddon/pkg/m3u"
)

// Build parses playlist text into classified channels.
//
// Entries are included or vetoed by the classifier. Entries sharing an origin
// URL collapse into one channel: the lower priority wins and keeps the slot of
// the first occurrence; equal priorities keep the first. Once maxChannels
// distinct channels have been collected the rest of the playlist is ignored,
// so the cutoff is first-N-encountered rather than top-N-by-priority. A
// maxChannels of zero or less means no limit. The result is stably sorted by
// priority.
//
// Malformed lines never fail the build; the returned error is only a read
// failure of r.
func Build(r io.Reader, maxChannels int) ([]Channel, Stats, error) {
	var (
		stats    Stats
		channels []Channel
		index    = make(map[string]int)
	)

	parser := &m3u.Parser{
		OnEntry: func(e *m3u.Entry) error {
			stats.Entries++

			result, ok := classify.Classify(e.TvgName, e.GroupTitle)
			if !ok {
				stats.Excluded++
				return nil
			}
			ch := newChannel(e, result)

			if i, dup := index[ch.OriginURL]; dup {
				stats.Duplicates++
				if ch.Priority < channels[i].Priority {
					channels[i] = ch
				}
				return nil
			}

			index[ch.OriginURL] = len(channels)
			channels = append(channels, ch)
			stats.Included++

			if maxChannels > 0 && len(channels) >= maxChannels {
				stats.Truncated = true
				return m3u.ErrStop
			}
			return nil
		},
		OnError: func(int, error) {
			stats.Skipped++
		},
	}

	if err := parser.ParseCompressed(r); err != nil && !errors.Is(err, m3u.ErrStop) {
		return nil, stats, fmt.Errorf("parsing playlist: %w", err)
	}

	slices.SortStableFunc(channels, func(a, b Channel) int {
		return a.Priority - b.Priority
	})
	return channels, stats, nil
}

func newChannel(e *m3u.Entry, result classify.Result) Channel {
	return Channel{
		DisplayName: e.TvgName,
		CleanName:   classify.CleanName(e.TvgName),
		Category:    result.Category,
		Quality:     result.Quality,
		OriginURL:   strings.TrimSpace(e.URL),
		LogoURL:     e.TvgLogo,
		GroupLabel:  e.GroupTitle,
		TvgID:       e.TvgID,
		Priority:    result.Priority,
	}
}
