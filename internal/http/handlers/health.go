package handlers

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/scheduler"
	"github.com/Jash-k/MyTVStremioAddon/pkg/httpclient"
)

// CatalogStatus reports the state of the channel catalog.
type CatalogStatus interface {
	Snapshot() catalog.Snapshot
}

// ManifestCacheStatus reports the size of the manifest cache.
type ManifestCacheStatus interface {
	Cached() int
}

// ClientStatus reports the named upstream clients and their circuit breakers.
type ClientStatus interface {
	Names() []string
	CircuitBreakerStatuses() []httpclient.CircuitBreakerStatus
}

// SchedulerStatus reports the next run of each background job.
type SchedulerStatus interface {
	NextRuns() []scheduler.JobRun
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	version   string
	startTime time.Time
	catalog   CatalogStatus
	manifests ManifestCacheStatus
	clients   ClientStatus
	scheduler SchedulerStatus
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// WithCatalog sets the catalog whose snapshot is reported.
func (h *HealthHandler) WithCatalog(c CatalogStatus) *HealthHandler {
	h.catalog = c
	return h
}

// WithManifestCache sets the manifest cache whose size is reported.
func (h *HealthHandler) WithManifestCache(m ManifestCacheStatus) *HealthHandler {
	h.manifests = m
	return h
}

// WithClients sets the upstream client registry.
func (h *HealthHandler) WithClients(c ClientStatus) *HealthHandler {
	h.clients = c
	return h
}

// WithScheduler sets the scheduler whose next runs are reported.
func (h *HealthHandler) WithScheduler(s SchedulerStatus) *HealthHandler {
	h.scheduler = s
	return h
}

// HealthInput is the input for the health check endpoint.
type HealthInput struct{}

// HealthOutput is the output for the health check endpoint.
type HealthOutput struct {
	Body HealthResponse
}

// LivezInput is the input for the liveness probe.
type LivezInput struct{}

// LivezOutput is the output for the liveness probe.
type LivezOutput struct {
	Body LivezResponse
}

// ReadyzInput is the input for the readiness probe.
type ReadyzInput struct{}

// ReadyzOutput is the output for the readiness probe.
type ReadyzOutput struct {
	Body ReadyzResponse
}

// Register registers the health routes with the API.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service including catalog state and system metrics",
		Tags:        []string{"System"},
	}, h.GetHealth)

	huma.Register(api, huma.Operation{
		OperationID: "getLivez",
		Method:      "GET",
		Path:        "/livez",
		Summary:     "Liveness probe",
		Tags:        []string{"System"},
	}, h.GetLivez)

	huma.Register(api, huma.Operation{
		OperationID: "getReadyz",
		Method:      "GET",
		Path:        "/readyz",
		Summary:     "Readiness probe",
		Description: "Ready once a channel catalog has been built",
		Tags:        []string{"System"},
	}, h.GetReadyz)
}

// GetHealth returns the health status of the service.
func (h *HealthHandler) GetHealth(_ context.Context, _ *HealthInput) (*HealthOutput, error) {
	now := time.Now()
	uptime := now.Sub(h.startTime)

	resp := HealthResponse{
		Status:        "healthy",
		Timestamp:     now.UTC().Format(time.RFC3339),
		Version:       h.version,
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		CPUInfo:       h.getCPUInfo(),
		Memory:        h.getMemoryInfo(),
	}

	if h.catalog != nil {
		snap := h.catalog.Snapshot()
		resp.Catalog = &snap
		if !snap.Ready {
			resp.Status = "degraded"
		}
	}
	if h.manifests != nil {
		resp.ManifestCache = ManifestCacheHealth{Entries: h.manifests.Cached()}
	}
	if h.clients != nil {
		resp.Clients = h.clients.Names()
		resp.CircuitBreakers = h.clients.CircuitBreakerStatuses()
	}
	if h.scheduler != nil {
		resp.Jobs = h.scheduler.NextRuns()
	}

	return &HealthOutput{Body: resp}, nil
}

// GetLivez reports that the process is serving requests.
func (h *HealthHandler) GetLivez(_ context.Context, _ *LivezInput) (*LivezOutput, error) {
	return &LivezOutput{Body: LivezResponse{Status: "ok"}}, nil
}

// GetReadyz reports whether the catalog has been built at least once.
// A stale catalog is still ready.
func (h *HealthHandler) GetReadyz(_ context.Context, _ *ReadyzInput) (*ReadyzOutput, error) {
	resp := ReadyzResponse{Status: "ready", Components: map[string]string{}}

	if h.catalog == nil {
		resp.Status = "not_ready"
		resp.Components["catalog"] = "not_configured"
		return &ReadyzOutput{Body: resp}, nil
	}

	switch snap := h.catalog.Snapshot(); {
	case !snap.Ready:
		resp.Status = "not_ready"
		resp.Components["catalog"] = "empty"
	case snap.Stale:
		resp.Components["catalog"] = "stale"
	default:
		resp.Components["catalog"] = "ok"
	}

	return &ReadyzOutput{Body: resp}, nil
}

// getCPUInfo returns CPU load information.
func (h *HealthHandler) getCPUInfo() CPUInfo {
	cores := runtime.NumCPU()
	info := CPUInfo{Cores: cores}

	loadAvg, err := load.Avg()
	if err == nil && loadAvg != nil {
		info.Load1Min = loadAvg.Load1
		info.Load5Min = loadAvg.Load5
		info.Load15Min = loadAvg.Load15
		if cores > 0 {
			info.LoadPercentage1Min = (loadAvg.Load1 / float64(cores)) * 100
		}
	}

	return info
}

// getMemoryInfo returns memory usage information.
func (h *HealthHandler) getMemoryInfo() MemoryInfo {
	info := MemoryInfo{}

	vmStat, err := mem.VirtualMemory()
	if err == nil && vmStat != nil {
		info.TotalMemoryMB = float64(vmStat.Total) / 1024 / 1024
		info.UsedMemoryMB = float64(vmStat.Used) / 1024 / 1024
		info.AvailableMemoryMB = float64(vmStat.Available) / 1024 / 1024
	}

	info.ProcessMB, info.PercentageOfSystem = processMemory(info.TotalMemoryMB)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	info.HeapAllocMB = float64(ms.HeapAlloc) / 1024 / 1024
	info.Goroutines = runtime.NumGoroutine()

	return info
}

// processMemory returns the RSS of this process and its share of system memory.
func processMemory(totalSystemMB float64) (float64, float64) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil || memInfo == nil {
		return 0, 0
	}
	rss := float64(memInfo.RSS) / 1024 / 1024
	if totalSystemMB <= 0 {
		return rss, 0
	}
	return rss, (rss / totalSystemMB) * 100
}
