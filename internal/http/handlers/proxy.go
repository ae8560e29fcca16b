package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jash-k/MyTVStremioAddon/internal/idcodec"
	"github.com/Jash-k/MyTVStremioAddon/internal/urlutil"
)

// proxyBufferSize is the copy buffer used when relaying upstream bytes.
const proxyBufferSize = 32 * 1024

// Opener opens a streaming upstream response.
type Opener interface {
	Open(ctx context.Context, url string) (*http.Response, error)
}

// ProxyHandler relays origin bytes for channels whose origin is not a
// playlist. Nothing is rewritten.
type ProxyHandler struct {
	opener Opener
	logger *slog.Logger
}

// NewProxyHandler creates a new passthrough proxy handler.
func NewProxyHandler(opener Opener) *ProxyHandler {
	return &ProxyHandler{opener: opener, logger: slog.Default()}
}

// WithLogger sets the logger.
func (h *ProxyHandler) WithLogger(logger *slog.Logger) *ProxyHandler {
	h.logger = logger
	return h
}

// RegisterChiRoutes registers the passthrough route as a raw chi handler.
func (h *ProxyHandler) RegisterChiRoutes(router chi.Router) {
	router.Get("/proxy/{id}", h.handleProxy)
	router.Options("/proxy/{id}", handleStreamOptions)
}

func (h *ProxyHandler) handleProxy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	origin, err := idcodec.Decode(chi.URLParam(r, "id"))
	if err != nil || !urlutil.IsAbsolute(origin) {
		SetDefaultCORSHeaders(w)
		http.NotFound(w, r)
		return
	}

	resp, err := h.opener.Open(ctx, origin)
	if err != nil {
		h.logger.WarnContext(ctx, "proxy upstream failed",
			slog.String("error", err.Error()),
		)
		SetDefaultCORSHeaders(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	defer resp.Body.Close()

	// Live streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	SetDefaultCORSHeaders(w)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	n, err := relay(w, resp.Body)
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.DebugContext(ctx, "proxy relay ended",
			slog.Int64("bytes", n),
			slog.String("error", err.Error()),
		)
	}
}

// relay copies src to w, flushing after every chunk so players see bytes
// as soon as the origin produces them.
func relay(w http.ResponseWriter, src io.Reader) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, proxyBufferSize)
	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			written, werr := w.Write(buf[:n])
			total += int64(written)
			if werr != nil {
				return total, werr
			}
			_ = rc.Flush()
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
