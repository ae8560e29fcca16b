// Package addon maps the channel catalog onto the addon protocol: the
// addon manifest, catalog listings of channel metas, and stream candidates
// for a channel id.
package addon

// ContentType is the only content type the addon serves.
const ContentType = "tv"

// Manifest describes the addon to clients.
type Manifest struct {
	ID            string        `json:"id"`
	Version       string        `json:"version"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Logo          string        `json:"logo,omitempty"`
	Types         []string      `json:"types"`
	Catalogs      []CatalogDef  `json:"catalogs"`
	Resources     []string      `json:"resources"`
	IDPrefixes    []string      `json:"idPrefixes"`
	BehaviorHints BehaviorHints `json:"behaviorHints"`
}

// CatalogDef declares one browsable catalog.
type CatalogDef struct {
	Type  string     `json:"type"`
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Extra []ExtraDef `json:"extra,omitempty"`
}

// ExtraDef declares an optional catalog argument.
type ExtraDef struct {
	Name       string `json:"name"`
	IsRequired bool   `json:"isRequired"`
}

// BehaviorHints are manifest-level client hints.
type BehaviorHints struct {
	Adult bool `json:"adult"`
	P2P   bool `json:"p2p"`
}

// Meta is one catalog item.
type Meta struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Poster      string   `json:"poster,omitempty"`
	PosterShape string   `json:"posterShape,omitempty"`
	Logo        string   `json:"logo,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Stream is one playable candidate for a channel.
type Stream struct {
	URL           string       `json:"url"`
	Name          string       `json:"name,omitempty"`
	Title         string       `json:"title"`
	BehaviorHints *StreamHints `json:"behaviorHints,omitempty"`
}

// StreamHints are per-stream client hints.
type StreamHints struct {
	NotWebReady bool `json:"notWebReady,omitempty"`
}
