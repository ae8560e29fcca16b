package middleware

import (
	"net/http"
	"strings"
)

// SkipCompressionFor wraps a compression middleware so requests under any of
// the path prefixes bypass it. Proxied media streams must be flushed as they
// arrive, which a compressing writer prevents.
func SkipCompressionFor(compressionHandler func(http.Handler) http.Handler, prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		compressedHandler := compressionHandler(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range prefixes {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			compressedHandler.ServeHTTP(w, r)
		})
	}
}
