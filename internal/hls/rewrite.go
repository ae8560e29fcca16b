package hls

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Jash-k/MyTVStremioAddon/internal/urlutil"
)

var uriAttr = regexp.MustCompile(`URI="([^"]*)"`)

// RewriteMedia rewrites a media playlist line by line:
//   - #EXT-X-TARGETDURATION is forced to target
//   - #EXTINF durations are capped at target, printed with three decimals
//   - URI attributes of #EXT-X-KEY and #EXT-X-MAP are resolved against base
//   - other tags are kept as they are
//   - segment URIs are resolved against base
func RewriteMedia(body, base string, target int) string {
	var out strings.Builder
	out.Grow(len(body) + len(body)/4)

	for line := range strings.Lines(body) {
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			line = "#EXT-X-TARGETDURATION:" + strconv.Itoa(target)
		case strings.HasPrefix(line, "#EXTINF:"):
			line = capExtinf(line, float64(target))
		case strings.HasPrefix(line, "#EXT-X-KEY:"), strings.HasPrefix(line, "#EXT-X-MAP:"):
			line = uriAttr.ReplaceAllStringFunc(line, func(attr string) string {
				ref := uriAttr.FindStringSubmatch(attr)[1]
				return `URI="` + urlutil.Resolve(base, ref) + `"`
			})
		case strings.HasPrefix(line, "#"):
		case strings.TrimSpace(line) == "":
			line = ""
		default:
			line = urlutil.Resolve(base, strings.TrimSpace(line))
		}

		out.WriteString(line)
		out.WriteByte('\n')
	}

	return out.String()
}

// capExtinf caps "#EXTINF:<duration>,<title>". Lines without a usable
// numeric duration are returned unchanged.
func capExtinf(line string, ceiling float64) string {
	rest := strings.TrimPrefix(line, "#EXTINF:")
	value, title, _ := strings.Cut(rest, ",")

	d, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return line
	}

	return "#EXTINF:" + strconv.FormatFloat(min(d, ceiling), 'f', 3, 64) + "," + title
}
