package scheduler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
)

type fakeRefresher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (*catalog.Catalog, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.Catalog{Channels: make([]catalog.Channel, 3)}, nil
}

type httpGetter struct{}

func (httpGetter) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}

func TestScheduler_RefreshCatalog(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := &fakeRefresher{}
		s := NewScheduler(Config{}, r, nil)
		require.NoError(t, s.RefreshCatalog(context.Background()))
		assert.Equal(t, int32(1), r.calls.Load())
	})

	t.Run("failure is wrapped", func(t *testing.T) {
		boom := errors.New("upstream down")
		s := NewScheduler(Config{}, &fakeRefresher{err: boom}, nil)
		err := s.RefreshCatalog(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}

func TestScheduler_KeepAlive(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"status":"healthy"}`)
	}))
	defer srv.Close()

	t.Run("pings the URL", func(t *testing.T) {
		s := NewScheduler(Config{KeepAliveURL: srv.URL + "/health"}, &fakeRefresher{}, httpGetter{})
		require.NoError(t, s.KeepAlive(context.Background()))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("error status", func(t *testing.T) {
		s := NewScheduler(Config{KeepAliveURL: srv.URL + "/missing"}, &fakeRefresher{}, httpGetter{})
		assert.ErrorContains(t, s.KeepAlive(context.Background()), "status 404")
	})

	t.Run("not configured", func(t *testing.T) {
		s := NewScheduler(Config{}, &fakeRefresher{}, nil)
		assert.Error(t, s.KeepAlive(context.Background()))
	})
}

func TestScheduler_StartRunsJobs(t *testing.T) {
	r := &fakeRefresher{}
	s := NewScheduler(Config{RefreshCron: "@every 1s"}, r, nil)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Len(t, s.NextRuns(), 1)
	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_StartErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		getter Getter
	}{
		{"invalid refresh expression", Config{RefreshCron: "not a cron"}, nil},
		{"keep-alive without URL", Config{KeepAliveCron: "@every 5m"}, httpGetter{}},
		{"keep-alive without client", Config{KeepAliveCron: "@every 5m", KeepAliveURL: "http://x/health"}, nil},
		{"invalid keep-alive expression", Config{KeepAliveCron: "61 * * * *", KeepAliveURL: "http://x/health"}, httpGetter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.config, &fakeRefresher{}, tt.getter)
			assert.Error(t, s.Start(context.Background()))
			assert.Nil(t, s.NextRuns())
		})
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	s := NewScheduler(Config{RefreshCron: "@every 25m"}, &fakeRefresher{}, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(Config{}, &fakeRefresher{}, nil)
	s.Stop()
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()
	assert.Nil(t, s.NextRuns())
}

func TestScheduler_NextRuns(t *testing.T) {
	s := NewScheduler(Config{
		RefreshCron:   "@every 25m",
		KeepAliveCron: "*/10 * * * *",
		KeepAliveURL:  "http://x/health",
	}, &fakeRefresher{}, httpGetter{})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	runs := s.NextRuns()
	require.Len(t, runs, 2)
	assert.Equal(t, JobCatalogRefresh, runs[0].Job)
	assert.Equal(t, JobKeepAlive, runs[1].Job)
	for _, run := range runs {
		assert.True(t, run.Next.After(time.Now()), run.Job)
	}
}
