// Package idcodec converts origin stream URLs into opaque, URL-path-safe
// identifiers and back.
//
// The encoding is standard base64 with '+' and '/' replaced by '-' and '_'
// and the trailing '=' padding removed, which is exactly
// base64.RawURLEncoding. Decoding also accepts padded input.
package idcodec

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DecodeError reports an identifier that cannot be turned back into a URL.
type DecodeError struct {
	ID  string
	Err error
}

func (e *DecodeError) Error() string {
	id := e.ID
	if len(id) > 48 {
		id = id[:48] + "..."
	}
	return fmt.Sprintf("idcodec: cannot decode %q: %v", id, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode returns the opaque identifier for url.
func Encode(url string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(url))
}

// Decode reverses Encode.
func Decode(id string) (string, error) {
	if id == "" {
		return "", &DecodeError{ID: id, Err: fmt.Errorf("empty identifier")}
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(id, "="))
	if err != nil {
		return "", &DecodeError{ID: id, Err: err}
	}
	if !utf8.Valid(raw) {
		return "", &DecodeError{ID: id, Err: fmt.Errorf("decoded value is not valid UTF-8")}
	}
	return string(raw), nil
}

// Codec adds a namespace prefix (such as "tamil:") to encoded identifiers.
type Codec struct {
	Prefix string
}

// New creates a Codec for the given namespace prefix.
func New(prefix string) Codec {
	return Codec{Prefix: prefix}
}

// Encode returns the namespaced identifier for url.
func (c Codec) Encode(url string) string {
	return c.Prefix + Encode(url)
}

// Decode strips the namespace prefix and decodes the remainder. Identifiers
// from another namespace fail with a DecodeError.
func (c Codec) Decode(id string) (string, error) {
	rest, ok := strings.CutPrefix(id, c.Prefix)
	if !ok {
		return "", &DecodeError{ID: id, Err: fmt.Errorf("missing %q prefix", c.Prefix)}
	}
	return Decode(rest)
}

// Owns reports whether id carries this codec's namespace.
func (c Codec) Owns(id string) bool {
	return strings.HasPrefix(id, c.Prefix)
}
