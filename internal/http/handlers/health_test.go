package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/scheduler"
	"github.com/Jash-k/MyTVStremioAddon/pkg/httpclient"
)

type fixedSnapshot catalog.Snapshot

func (f fixedSnapshot) Snapshot() catalog.Snapshot { return catalog.Snapshot(f) }

type fixedCache int

func (f fixedCache) Cached() int { return int(f) }

type fixedJobs []scheduler.JobRun

func (f fixedJobs) NextRuns() []scheduler.JobRun { return f }

func TestHealthHandler_GetLivez(t *testing.T) {
	handler := NewHealthHandler("1.0.0")

	output, err := handler.GetLivez(context.Background(), &LivezInput{})
	require.NoError(t, err)
	assert.Equal(t, "ok", output.Body.Status)
}

func TestHealthHandler_GetReadyz(t *testing.T) {
	tests := []struct {
		name      string
		handler   *HealthHandler
		status    string
		component string
	}{
		{
			name:      "catalog not configured",
			handler:   NewHealthHandler("1.0.0"),
			status:    "not_ready",
			component: "not_configured",
		},
		{
			name:      "catalog never built",
			handler:   NewHealthHandler("1.0.0").WithCatalog(fixedSnapshot{}),
			status:    "not_ready",
			component: "empty",
		},
		{
			name:      "stale catalog is still ready",
			handler:   NewHealthHandler("1.0.0").WithCatalog(fixedSnapshot{Ready: true, Stale: true}),
			status:    "ready",
			component: "stale",
		},
		{
			name:      "fresh catalog",
			handler:   NewHealthHandler("1.0.0").WithCatalog(fixedSnapshot{Ready: true, Channels: 6}),
			status:    "ready",
			component: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := tt.handler.GetReadyz(context.Background(), &ReadyzInput{})
			require.NoError(t, err)
			assert.Equal(t, tt.status, output.Body.Status)
			assert.Equal(t, tt.component, output.Body.Components["catalog"])
		})
	}
}

func TestHealthHandler_GetHealth(t *testing.T) {
	registry := httpclient.NewRegistry()
	registry.Register("playlist", httpclient.NewWithDefaults())
	registry.Register("manifest", httpclient.NewWithDefaults())
	next := time.Now().Add(25 * time.Minute)

	handler := NewHealthHandler("1.0.0").
		WithCatalog(fixedSnapshot{Ready: true, Channels: 6, Age: time.Minute}).
		WithManifestCache(fixedCache(3)).
		WithClients(registry).
		WithScheduler(fixedJobs{{Job: scheduler.JobCatalogRefresh, Next: next}})

	output, err := handler.GetHealth(context.Background(), &HealthInput{})
	require.NoError(t, err)

	body := output.Body
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.0.0", body.Version)
	assert.NotEmpty(t, body.Uptime)
	assert.NotEmpty(t, body.Timestamp)
	assert.NotZero(t, body.CPUInfo.Cores)
	assert.Positive(t, body.Memory.Goroutines)
	require.NotNil(t, body.Catalog)
	assert.Equal(t, 6, body.Catalog.Channels)
	assert.Equal(t, 3, body.ManifestCache.Entries)
	assert.Equal(t, []string{"manifest", "playlist"}, body.Clients)
	require.Len(t, body.Jobs, 1)
	assert.Equal(t, scheduler.JobCatalogRefresh, body.Jobs[0].Job)
	assert.Equal(t, next, body.Jobs[0].Next)
}

func TestHealthHandler_DegradedWithoutCatalog(t *testing.T) {
	handler := NewHealthHandler("1.0.0").WithCatalog(fixedSnapshot{})

	output, err := handler.GetHealth(context.Background(), &HealthInput{})
	require.NoError(t, err)
	assert.Equal(t, "degraded", output.Body.Status)
}
