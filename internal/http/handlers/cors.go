package handlers

import "net/http"

// CORSConfig holds the CORS headers set on raw streaming responses.
type CORSConfig struct {
	AllowOrigin   string
	AllowMethods  string
	AllowHeaders  string
	ExposeHeaders string
}

// DefaultCORSConfig returns the default CORS configuration for streaming endpoints.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigin:   "*",
		AllowMethods:  "GET, OPTIONS",
		AllowHeaders:  "Content-Type, Accept, Range",
		ExposeHeaders: "Content-Length, Content-Range",
	}
}

// SetCORSHeaders sets CORS headers on a streaming response.
func SetCORSHeaders(w http.ResponseWriter, config CORSConfig) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", config.AllowOrigin)
	h.Set("Access-Control-Allow-Methods", config.AllowMethods)
	h.Set("Access-Control-Allow-Headers", config.AllowHeaders)
	if config.ExposeHeaders != "" {
		h.Set("Access-Control-Expose-Headers", config.ExposeHeaders)
	}
}

// SetDefaultCORSHeaders sets the default CORS headers for streaming endpoints.
func SetDefaultCORSHeaders(w http.ResponseWriter) {
	SetCORSHeaders(w, DefaultCORSConfig())
}

// handleStreamOptions answers CORS preflight for streaming routes.
func handleStreamOptions(w http.ResponseWriter, _ *http.Request) {
	SetDefaultCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}
