package m3u

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Writer provides streaming M3U playlist writing.
type Writer struct {
	w             io.Writer
	headerWritten bool
}

// NewWriter creates a new M3U writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the #EXTM3U header once.
func (w *Writer) WriteHeader() error {
	if w.headerWritten {
		return nil
	}
	if _, err := fmt.Fprintln(w.w, "#EXTM3U"); err != nil {
		return fmt.Errorf("writing M3U header: %w", err)
	}
	w.headerWritten = true
	return nil
}

// WriteEntry writes one entry, emitting the header first if needed.
// Output round-trips through Parser.
func (w *Writer) WriteEntry(entry *Entry) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}

	var b strings.Builder
	duration := entry.Duration
	if duration == 0 {
		duration = -1
	}
	fmt.Fprintf(&b, "#EXTINF:%d", duration)

	writeAttr(&b, "tvg-id", entry.TvgID)
	writeAttr(&b, "tvg-name", entry.TvgName)
	writeAttr(&b, "tvg-logo", entry.TvgLogo)
	writeAttr(&b, "group-title", entry.GroupTitle)

	keys := make([]string, 0, len(entry.Extra))
	for k := range entry.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		writeAttr(&b, k, entry.Extra[k])
	}

	title := entry.Title
	if title == "" {
		title = entry.TvgName
	}
	b.WriteByte(',')
	b.WriteString(title)

	if _, err := fmt.Fprintf(w.w, "%s\n%s\n", b.String(), entry.URL); err != nil {
		return fmt.Errorf("writing entry %q: %w", entry.TvgName, err)
	}
	return nil
}

// writeAttr appends key="value", dropping quotes from the value since the
// format has no escape syntax.
func writeAttr(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, ` %s="%s"`, key, strings.ReplaceAll(value, `"`, "'"))
}
