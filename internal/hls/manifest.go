// Package hls fetches origin HLS manifests and rewrites them for constrained
// players: a master playlist is collapsed to one moderate-bitrate variant,
// segment durations are capped, and every URI is made absolute so the
// manifest can be served from this host.
package hls

import (
	"bufio"
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bluenviron/gohlslib/v2/pkg/playlist"
)

// EmptyManifest is the syntactically valid, segment-less playlist served when
// a manifest cannot be produced.
const EmptyManifest = "#EXTM3U\n" +
	"#EXT-X-VERSION:3\n" +
	"#EXT-X-TARGETDURATION:6\n" +
	"#EXT-X-MEDIA-SEQUENCE:0\n" +
	"#EXT-X-ENDLIST\n"

// ContentType is the media type manifests are served with.
const ContentType = "text/vnd.apple.mpegurl"

// Shape classifies a fetched manifest.
type Shape string

const (
	// ShapeMaster lists variant streams.
	ShapeMaster Shape = "master"
	// ShapeMedia lists segments.
	ShapeMedia Shape = "media"
	// ShapeOther is a playlist with neither variants nor segments.
	ShapeOther Shape = "passthrough"
	// ShapeEmpty marks the EmptyManifest fallback.
	ShapeEmpty Shape = "empty"
)

// ErrNotManifest is wrapped by ParseError when a body lacks the #EXTM3U header.
var ErrNotManifest = errors.New("missing #EXTM3U header")

// ParseError reports a body that could not be used as a manifest.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Variant is one rendition listed by a master manifest.
type Variant struct {
	Bandwidth int
	URI       string
}

// inspection is what the engine needs to know about a fetched body.
type inspection struct {
	shape    Shape
	variants []Variant
}

// inspect classifies body. gohlslib is tried first; origins that fail its
// strict validation are classified by a line scan so they still get rewritten.
func inspect(body []byte) (inspection, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")), " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("#EXTM3U")) {
		return inspection{}, ErrNotManifest
	}

	if pl, err := playlist.Unmarshal(trimmed); err == nil {
		switch p := pl.(type) {
		case *playlist.Multivariant:
			variants := make([]Variant, 0, len(p.Variants))
			for _, v := range p.Variants {
				variants = append(variants, Variant{Bandwidth: v.Bandwidth, URI: v.URI})
			}
			return shapeOf(variants, 0), nil
		case *playlist.Media:
			return shapeOf(nil, len(p.Segments)), nil
		}
	}

	return scan(trimmed), nil
}

func shapeOf(variants []Variant, segments int) inspection {
	switch {
	case len(variants) > 0:
		return inspection{shape: ShapeMaster, variants: variants}
	case segments > 0:
		return inspection{shape: ShapeMedia}
	default:
		return inspection{shape: ShapeOther}
	}
}

var bandwidthAttr = regexp.MustCompile(`(?:^|[:,])BANDWIDTH=(\d+)`)

// scan is the lenient classifier: #EXT-X-STREAM-INF lines followed by a URI
// make a master, any #EXTINF makes a media playlist.
func scan(body []byte) inspection {
	var variants []Variant
	segments := 0
	pending := -1

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			pending = 0
			if m := bandwidthAttr.FindStringSubmatch(line); m != nil {
				pending, _ = strconv.Atoi(m[1])
			}
		case strings.HasPrefix(line, "#EXTINF:"):
			segments++
		case strings.HasPrefix(line, "#"):
		case pending >= 0:
			variants = append(variants, Variant{Bandwidth: pending, URI: line})
			pending = -1
		}
	}
	return shapeOf(variants, segments)
}

// SelectVariant returns the middle variant by index of the list sorted by
// ascending bandwidth, floor(n/2). Equal bandwidths keep their listed order.
func SelectVariant(variants []Variant) (Variant, bool) {
	if len(variants) == 0 {
		return Variant{}, false
	}
	sorted := slices.Clone(variants)
	slices.SortStableFunc(sorted, func(a, b Variant) int {
		return cmp.Compare(a.Bandwidth, b.Bandwidth)
	})
	return sorted[len(sorted)/2], true
}
