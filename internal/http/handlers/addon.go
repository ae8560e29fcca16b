// Package handlers provides the HTTP handlers of the addon server.
package handlers

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Jash-k/MyTVStremioAddon/internal/addon"
	"github.com/Jash-k/MyTVStremioAddon/internal/http/middleware"
)

// Cache-Control values for addon responses. Catalogs change at most once per
// catalog TTL; stream lists are computed from the id alone.
const (
	manifestCacheControl = "public, max-age=3600"
	catalogCacheControl  = "public, max-age=300"
	streamCacheControl   = "public, max-age=60"
)

// AddonHandler serves the addon protocol: manifest, catalogs and streams.
type AddonHandler struct {
	svc    *addon.Service
	logger *slog.Logger
}

// NewAddonHandler creates a new addon handler.
func NewAddonHandler(svc *addon.Service) *AddonHandler {
	return &AddonHandler{svc: svc, logger: slog.Default()}
}

// WithLogger sets the logger.
func (h *AddonHandler) WithLogger(logger *slog.Logger) *AddonHandler {
	h.logger = logger
	return h
}

// ManifestInput is the input for the manifest endpoint.
type ManifestInput struct{}

// ManifestOutput is the output for the manifest endpoint.
type ManifestOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         addon.Manifest
}

// CatalogInput is the input for the catalog endpoint. ID carries the
// ".json" suffix of the addon path convention.
type CatalogInput struct {
	Type string `path:"type" doc:"Content type, always tv"`
	ID   string `path:"id" doc:"Catalog id with .json suffix, e.g. tamil-all.json"`
}

// CatalogExtraInput is the input for the catalog endpoint with extra arguments.
type CatalogExtraInput struct {
	Type  string `path:"type" doc:"Content type, always tv"`
	ID    string `path:"id" doc:"Catalog id, e.g. tamil-all"`
	Extra string `path:"extra" doc:"Extra arguments with .json suffix, e.g. search=sun&skip=100.json"`
}

// CatalogBody is the catalog response.
type CatalogBody struct {
	Metas []addon.Meta `json:"metas"`
}

// CatalogOutput is the output for the catalog endpoints.
type CatalogOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         CatalogBody
}

// StreamInput is the input for the stream endpoint.
type StreamInput struct {
	Type string `path:"type" doc:"Content type, always tv"`
	ID   string `path:"id" doc:"Channel id with .json suffix"`
}

// StreamBody is the stream response.
type StreamBody struct {
	Streams []addon.Stream `json:"streams"`
}

// StreamOutput is the output for the stream endpoint.
type StreamOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         StreamBody
}

// Register registers the addon routes with the API.
func (h *AddonHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getAddonManifest",
		Method:      "GET",
		Path:        "/manifest.json",
		Summary:     "Addon manifest",
		Description: "Returns the addon manifest listing catalogs, resources and id prefixes",
		Tags:        []string{"Addon"},
	}, h.GetManifest)

	huma.Register(api, huma.Operation{
		OperationID: "getCatalog",
		Method:      "GET",
		Path:        "/catalog/{type}/{id}",
		Summary:     "Channel catalog",
		Description: "Lists channel metas of a catalog. Unknown types or catalogs return an empty list.",
		Tags:        []string{"Addon"},
	}, h.GetCatalog)

	huma.Register(api, huma.Operation{
		OperationID: "getCatalogWithExtra",
		Method:      "GET",
		Path:        "/catalog/{type}/{id}/{extra}",
		Summary:     "Channel catalog with search or paging",
		Description: "Lists channel metas filtered by search and paged by skip.",
		Tags:        []string{"Addon"},
	}, h.GetCatalogWithExtra)

	huma.Register(api, huma.Operation{
		OperationID: "getStreams",
		Method:      "GET",
		Path:        "/stream/{type}/{id}",
		Summary:     "Channel streams",
		Description: "Resolves a channel id to playable URLs. Undecodable ids return an empty list.",
		Tags:        []string{"Addon"},
	}, h.GetStreams)
}

// GetManifest returns the addon manifest.
func (h *AddonHandler) GetManifest(_ context.Context, _ *ManifestInput) (*ManifestOutput, error) {
	return &ManifestOutput{CacheControl: manifestCacheControl, Body: h.svc.Manifest()}, nil
}

// GetCatalog returns the metas of a catalog.
func (h *AddonHandler) GetCatalog(ctx context.Context, input *CatalogInput) (*CatalogOutput, error) {
	return h.catalog(ctx, input.Type, input.ID, ""), nil
}

// GetCatalogWithExtra returns the metas of a catalog filtered by search and paged by skip.
func (h *AddonHandler) GetCatalogWithExtra(ctx context.Context, input *CatalogExtraInput) (*CatalogOutput, error) {
	return h.catalog(ctx, input.Type, input.ID, input.Extra), nil
}

func (h *AddonHandler) catalog(ctx context.Context, contentType, rawID, rawExtra string) *CatalogOutput {
	id := pathParam(rawID)
	extra := addon.ParseExtra(pathParam(rawExtra))
	metas := h.svc.Catalog(ctx, contentType, id, extra)

	h.logger.DebugContext(ctx, "catalog served",
		slog.String("catalog", id),
		slog.String("search", extra.Search),
		slog.Int("skip", extra.Skip),
		slog.Int("metas", len(metas)),
	)
	return &CatalogOutput{CacheControl: catalogCacheControl, Body: CatalogBody{Metas: metas}}
}

// GetStreams returns the stream candidates of a channel.
func (h *AddonHandler) GetStreams(ctx context.Context, input *StreamInput) (*StreamOutput, error) {
	streams := h.svc.Streams(ctx, input.Type, pathParam(input.ID), middleware.GetBaseURL(ctx))
	return &StreamOutput{CacheControl: streamCacheControl, Body: StreamBody{Streams: streams}}, nil
}

// pathParam unescapes a path segment and drops the ".json" suffix.
func pathParam(raw string) string {
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return strings.TrimSuffix(raw, ".json")
}
