package handlers

import (
	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/scheduler"
	"github.com/Jash-k/MyTVStremioAddon/pkg/httpclient"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status          string                            `json:"status"`
	Timestamp       string                            `json:"timestamp"`
	Version         string                            `json:"version"`
	Uptime          string                            `json:"uptime"`
	UptimeSeconds   float64                           `json:"uptime_seconds"`
	CPUInfo         CPUInfo                           `json:"cpu_info"`
	Memory          MemoryInfo                        `json:"memory"`
	Catalog         *catalog.Snapshot                 `json:"catalog,omitempty"`
	ManifestCache   ManifestCacheHealth               `json:"manifest_cache"`
	Jobs            []scheduler.JobRun                `json:"jobs,omitempty"`
	Clients         []string                          `json:"clients,omitempty"`
	CircuitBreakers []httpclient.CircuitBreakerStatus `json:"circuit_breakers,omitempty"`
}

// CPUInfo contains CPU load information.
type CPUInfo struct {
	Cores              int     `json:"cores"`
	Load1Min           float64 `json:"load_1min"`
	Load5Min           float64 `json:"load_5min"`
	Load15Min          float64 `json:"load_15min"`
	LoadPercentage1Min float64 `json:"load_percentage_1min"`
}

// MemoryInfo contains system and process memory information.
type MemoryInfo struct {
	TotalMemoryMB      float64 `json:"total_memory_mb"`
	UsedMemoryMB       float64 `json:"used_memory_mb"`
	AvailableMemoryMB  float64 `json:"available_memory_mb"`
	ProcessMB          float64 `json:"process_mb"`
	PercentageOfSystem float64 `json:"percentage_of_system"`
	HeapAllocMB        float64 `json:"heap_alloc_mb"`
	Goroutines         int     `json:"goroutines"`
}

// ManifestCacheHealth reports the manifest cache.
type ManifestCacheHealth struct {
	Entries int `json:"entries"`
}

// LivezResponse is the liveness probe response.
type LivezResponse struct {
	Status string `json:"status"`
}

// ReadyzResponse is the readiness probe response.
type ReadyzResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
