// Package m3u provides streaming extended-M3U playlist parsing and writing.
package m3u

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
)

// Entry is one channel record: an #EXTINF metadata line plus the URL line after it.
type Entry struct {
	// Duration is the declared duration in seconds (-1 for live streams).
	Duration int

	// TvgID is the external (EPG) identifier. Optional.
	TvgID string

	// TvgName is the advertised channel name. Entries without it are dropped.
	TvgName string

	// TvgLogo is the logo URL. Optional.
	TvgLogo string

	// GroupTitle is the raw source grouping. Optional.
	GroupTitle string

	// Title is the free text after the attribute list.
	Title string

	// URL is the stream URL. It always carries a scheme.
	URL string

	// Extra contains attributes not mapped to a field above.
	Extra map[string]string
}

// ErrStop may be returned from OnEntry to end parsing early without error.
var ErrStop = errors.New("m3u: stop parsing")

// Recoverable line errors reported through Parser.OnError.
var (
	ErrInvalidExtinf = errors.New("invalid EXTINF line")
	ErrMissingName   = errors.New("EXTINF line has no tvg-name")
	ErrNoScheme      = errors.New("URL line has no scheme")
)

// Parser provides streaming M3U parsing with callback-based processing.
// Malformed input never fails the parse; offending lines are skipped and
// reported through OnError.
type Parser struct {
	// OnEntry is called for each complete entry, in playlist order.
	OnEntry func(entry *Entry) error

	// OnError is called for skipped lines. If nil, they are ignored.
	OnError func(lineNum int, err error)
}

var (
	// #EXTINF:-1 tvg-id="..." tvg-name="...",Title
	extinfRegex = regexp.MustCompile(`^#EXTINF:\s*(-?\d+(?:\.\d+)?)?\s*(.*)$`)

	// key="value" or key=value
	attrRegex = regexp.MustCompile(`([a-zA-Z0-9_-]+)=(?:"([^"]*)"|([^\s,"]+))`)

	schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://\S`)
)

// Parse parses a plain-text M3U playlist, calling OnEntry for each channel.
func (p *Parser) Parse(r io.Reader) error {
	if p.OnEntry == nil {
		return fmt.Errorf("OnEntry callback is required")
	}

	scanner := bufio.NewScanner(r)
	// Some provider URLs carry very long token query strings.
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var pending *Entry
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		switch {
		case line == "":
			continue

		case strings.HasPrefix(line, "#EXTINF"):
			// A new metadata line always discards the previous unmatched one.
			pending = nil
			entry, err := parseExtinf(line)
			if err != nil {
				p.handleError(lineNum, err)
				continue
			}
			pending = entry

		case strings.HasPrefix(line, "#"):
			continue

		case !schemeRegex.MatchString(line):
			p.handleError(lineNum, fmt.Errorf("%w: %q", ErrNoScheme, truncate(line, 64)))

		case pending != nil:
			pending.URL = line
			entry := pending
			pending = nil
			if err := p.OnEntry(entry); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return fmt.Errorf("callback error at line %d: %w", lineNum, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning M3U: %w", err)
	}

	return nil
}

// ParseCompressed parses a playlist that may be gzip, bzip2, or xz compressed.
// Compression is detected from magic bytes; anything else is treated as text.
func (p *Parser) ParseCompressed(r io.Reader) error {
	br := bufio.NewReader(r)

	header, err := br.Peek(6)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("peeking header: %w", err)
	}

	var reader io.Reader = br

	switch {
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gzr.Close()
		reader = gzr

	case len(header) >= 3 && string(header[:3]) == "BZh":
		reader = bzip2.NewReader(br)

	case len(header) >= 6 && string(header) == "\xfd7zXZ\x00":
		xzr, err := xz.NewReader(br)
		if err != nil {
			return fmt.Errorf("creating xz reader: %w", err)
		}
		reader = xzr
	}

	return p.Parse(reader)
}

// parseExtinf extracts the metadata from an #EXTINF line.
func parseExtinf(line string) (*Entry, error) {
	matches := extinfRegex.FindStringSubmatch(line)
	if matches == nil {
		return nil, ErrInvalidExtinf
	}

	entry := &Entry{Duration: -1}
	if matches[1] != "" {
		if d, err := strconv.ParseFloat(matches[1], 64); err == nil {
			entry.Duration = int(d)
		}
	}

	remainder := matches[2]
	if idx := findTitleStart(remainder); idx >= 0 {
		entry.Title = strings.TrimSpace(remainder[idx+1:])
		remainder = remainder[:idx]
	}

	for _, match := range attrRegex.FindAllStringSubmatch(remainder, -1) {
		value := match[2]
		if value == "" {
			value = match[3]
		}
		value = strings.TrimSpace(value)

		switch key := strings.ToLower(match[1]); key {
		case "tvg-id":
			entry.TvgID = value
		case "tvg-name":
			entry.TvgName = value
		case "tvg-logo":
			entry.TvgLogo = value
		case "group-title":
			entry.GroupTitle = value
		default:
			if entry.Extra == nil {
				entry.Extra = make(map[string]string)
			}
			entry.Extra[key] = value
		}
	}

	if entry.TvgName == "" {
		return nil, ErrMissingName
	}

	return entry, nil
}

// findTitleStart finds the comma separating attributes from the title,
// ignoring commas inside quoted values.
func findTitleStart(s string) int {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				return i
			}
		}
	}
	return -1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (p *Parser) handleError(lineNum int, err error) {
	if p.OnError != nil {
		p.OnError(lineNum, err)
	}
}
