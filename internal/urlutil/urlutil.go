// Package urlutil provides URL manipulation utilities.
package urlutil

import (
	"net/http"
	"net/url"
	"strings"
)

// NormalizeBaseURL normalizes a base URL for consistent use:
//   - Adds http:// scheme if no scheme provided
//   - Removes trailing slash for clean path joining
//
// Examples:
//
//	"tv.example.com"        -> "http://tv.example.com"
//	"https://tv.example.com/" -> "https://tv.example.com"
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimSuffix(baseURL, "/")
}

// JoinPath joins a base URL with a path, ensuring single slashes.
func JoinPath(baseURL, path string) string {
	if baseURL == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(baseURL, "/") + path
}

// IsAbsolute reports whether u carries a scheme and host.
func IsAbsolute(u string) bool {
	parsed, err := url.Parse(u)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

// BaseOf returns u up to and including its last path separator, with any
// query dropped. "https://a.b/live/index.m3u8?t=1" -> "https://a.b/live/".
func BaseOf(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[:i+1]
	}
	return u
}

// Resolve resolves ref against base. Absolute refs are returned unchanged.
// Root-relative, protocol-relative, and dot-segment refs are handled per
// RFC 3986; if either side fails to parse the base prefix is concatenated.
func Resolve(base, ref string) string {
	if ref == "" || IsAbsolute(ref) {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return BaseOf(base) + ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return BaseOf(base) + ref
	}
	return b.ResolveReference(r).String()
}

// HasPlaylistPath reports whether the URL path ends in an HLS/M3U extension.
func HasPlaylistPath(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	p := strings.ToLower(parsed.Path)
	return strings.HasSuffix(p, ".m3u8") || strings.HasSuffix(p, ".m3u")
}

// RequestBaseURL derives the externally visible base URL of a request,
// honouring X-Forwarded-Proto and X-Forwarded-Host from a fronting proxy.
func RequestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}
