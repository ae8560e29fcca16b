package middleware

import (
	"context"
	"net/http"

	"github.com/Jash-k/MyTVStremioAddon/internal/urlutil"
)

type baseURLKey struct{}

// BaseURL stores the externally visible base URL of the server in the
// request context. A configured public URL wins; otherwise it is derived
// from the request, honouring X-Forwarded-Proto and X-Forwarded-Host.
func BaseURL(publicURL string) func(http.Handler) http.Handler {
	publicURL = urlutil.NormalizeBaseURL(publicURL)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			base := publicURL
			if base == "" {
				base = urlutil.RequestBaseURL(r)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), baseURLKey{}, base)))
		})
	}
}

// GetBaseURL returns the base URL stored by BaseURL, or "".
func GetBaseURL(ctx context.Context) string {
	if base, ok := ctx.Value(baseURLKey{}).(string); ok {
		return base
	}
	return ""
}
