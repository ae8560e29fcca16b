// Package scheduler runs the periodic background jobs of the server: the
// warm catalog refresh and the optional keep-alive ping.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/config"
	"github.com/Jash-k/MyTVStremioAddon/internal/observability"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 2 * time.Minute

// Job names.
const (
	JobCatalogRefresh = "catalog_refresh"
	JobKeepAlive      = "keep_alive"
)

// JobRun is the next activation of a scheduled job.
type JobRun struct {
	Job  string    `json:"job"`
	Next time.Time `json:"next"`
}

// Refresher rebuilds the channel catalog.
type Refresher interface {
	Refresh(ctx context.Context) (*catalog.Catalog, error)
}

// Getter issues the keep-alive request.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Config holds the job schedules. An empty expression disables its job.
type Config struct {
	RefreshCron   string
	KeepAliveCron string
	KeepAliveURL  string
	JobTimeout    time.Duration
}

// Scheduler runs jobs on cron schedules.
type Scheduler struct {
	mu sync.Mutex

	config    Config
	refresher Refresher
	getter    Getter
	logger    *slog.Logger

	cron *cron.Cron
	jobs map[cron.EntryID]string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler. getter may be nil when no keep-alive
// job is configured.
func NewScheduler(cfg Config, refresher Refresher, getter Getter) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	return &Scheduler{
		config:    cfg,
		refresher: refresher,
		getter:    getter,
		logger:    slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	return s
}

// Start registers the configured jobs and starts the cron loop. Jobs run
// with a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("scheduler already started")
	}

	cl := cronLogger{s.logger}
	c := cron.New(
		cron.WithParser(config.CronParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	jobs := make(map[cron.EntryID]string)
	if s.config.RefreshCron != "" {
		id, err := c.AddFunc(s.config.RefreshCron, s.runJob(JobCatalogRefresh, s.RefreshCatalog))
		if err != nil {
			return fmt.Errorf("scheduling catalog refresh %q: %w", s.config.RefreshCron, err)
		}
		jobs[id] = JobCatalogRefresh
	}
	if s.config.KeepAliveCron != "" {
		if s.config.KeepAliveURL == "" || s.getter == nil {
			return fmt.Errorf("keep-alive schedule %q needs a URL", s.config.KeepAliveCron)
		}
		id, err := c.AddFunc(s.config.KeepAliveCron, s.runJob(JobKeepAlive, s.KeepAlive))
		if err != nil {
			return fmt.Errorf("scheduling keep-alive %q: %w", s.config.KeepAliveCron, err)
		}
		jobs[id] = JobKeepAlive
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron, s.jobs = c, jobs
	c.Start()

	s.logger.Info("scheduler started",
		slog.Int("jobs", len(jobs)),
		slog.String("refresh_cron", s.config.RefreshCron),
		slog.String("keep_alive_cron", s.config.KeepAliveCron))

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.jobs, s.cancel, s.ctx = nil, nil, nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()

	s.logger.Info("scheduler stopped")
}

// NextRuns returns the next activation of every scheduled job, sorted by
// job name. It is empty while the scheduler is stopped.
func (s *Scheduler) NextRuns() []JobRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return nil
	}
	entries := s.cron.Entries()
	runs := make([]JobRun, 0, len(entries))
	for _, e := range entries {
		runs = append(runs, JobRun{Job: s.jobs[e.ID], Next: e.Next})
	}
	slices.SortFunc(runs, func(a, b JobRun) int { return strings.Compare(a.Job, b.Job) })
	return runs
}

func (s *Scheduler) runJob(name string, job func(context.Context) error) func() {
	return func() {
		s.mu.Lock()
		base := s.ctx
		s.mu.Unlock()
		if base == nil {
			return
		}

		ctx, cancel := context.WithTimeout(base, s.config.JobTimeout)
		defer cancel()

		var err error
		defer observability.TimedOperation(ctx, s.logger, name, &err)()
		err = job(ctx)
	}
}

// RefreshCatalog rebuilds the catalog ahead of expiry so request paths
// keep hitting a fresh snapshot.
func (s *Scheduler) RefreshCatalog(ctx context.Context) error {
	cat, err := s.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing catalog: %w", err)
	}
	s.logger.DebugContext(ctx, "catalog warmed", slog.Int("channels", cat.Len()))
	return nil
}

// KeepAlive requests the keep-alive URL. Hosting platforms that idle
// unvisited instances count it as traffic.
func (s *Scheduler) KeepAlive(ctx context.Context) error {
	if s.getter == nil || s.config.KeepAliveURL == "" {
		return errors.New("keep-alive not configured")
	}
	resp, err := s.getter.Get(ctx, s.config.KeepAliveURL)
	if err != nil {
		return fmt.Errorf("keep-alive request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("keep-alive request: status %d", resp.StatusCode)
	}
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}
