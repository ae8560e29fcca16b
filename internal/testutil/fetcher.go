// Package testutil holds fakes and fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/Jash-k/MyTVStremioAddon/internal/upstream"
)

// FakeFetcher serves canned documents by URL and counts calls. URLs with no
// body or error configured fail with a 404 FetchError.
type FakeFetcher struct {
	mu        sync.Mutex
	bodies    map[string]string
	errs      map[string]error
	redirects map[string]string
	calls     map[string]int
	gate      chan struct{}
}

// NewFakeFetcher creates a FakeFetcher serving bodies.
func NewFakeFetcher(bodies map[string]string) *FakeFetcher {
	f := &FakeFetcher{
		bodies:    make(map[string]string),
		errs:      make(map[string]error),
		redirects: make(map[string]string),
		calls:     make(map[string]int),
	}
	for u, b := range bodies {
		f.bodies[u] = b
	}
	return f
}

// Set serves body for url, clearing any configured error.
func (f *FakeFetcher) Set(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = body
	delete(f.errs, url)
}

// Fail makes url fail with err.
func (f *FakeFetcher) Fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

// Redirect reports final as the URL the body for url was served from.
func (f *FakeFetcher) Redirect(url, final string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirects[url] = final
}

// Hold makes every Fetch block until the returned release func is called.
func (f *FakeFetcher) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many times url was fetched.
func (f *FakeFetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// Fetch implements the fetcher interfaces of catalog and hls.
func (f *FakeFetcher) Fetch(ctx context.Context, url string) (upstream.Document, error) {
	f.mu.Lock()
	f.calls[url]++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return upstream.Document{}, &upstream.FetchError{URL: url, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[url]; ok {
		return upstream.Document{}, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return upstream.Document{}, &upstream.FetchError{URL: url, StatusCode: 404}
	}
	final := url
	if r, ok := f.redirects[url]; ok {
		final = r
	}
	return upstream.Document{Body: []byte(body), FinalURL: final}, nil
}
