// Package fetch is the offline-aware read path: network-first, cache-fallback.
// A live network answer always wins; the local cache is consulted only when
// the transport itself fails, never when a reachable server returns an error.
package fetch

import (
	"context"
	"encoding/json"

	"github.com/fieldops/fieldsync/internal/apiclient"
	"github.com/fieldops/fieldsync/internal/connectivity"
	"github.com/fieldops/fieldsync/internal/diag"
	"github.com/fieldops/fieldsync/internal/store"
)

// Fetcher wraps a single logical "fetch JSON from URL" operation.
type Fetcher struct {
	client  *apiclient.Client
	store   *store.Store
	policy  *Policy
	tracker *connectivity.Tracker
	log     *diag.Logger

	// spawn runs the fire-and-forget write-through. Defaults to a goroutine;
	// tests inject a synchronous version.
	spawn func(fn func())
}

// New creates a fetcher. A nil policy falls back to the defaults.
func New(client *apiclient.Client, s *store.Store, policy *Policy, tracker *connectivity.Tracker, log *diag.Logger) *Fetcher {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Fetcher{
		client:  client,
		store:   s,
		policy:  policy,
		tracker: tracker,
		log:     log,
		spawn:   func(fn func()) { go fn() },
	}
}

// Fetch resolves a read. On network success the body is returned and, for
// cacheable URLs, written through to the endpoint cache under the exact URL
// (query string included) without blocking or failing the read. On a
// transport-level failure a fresh cache entry substitutes when one exists;
// otherwise the original network error propagates. An HTTP error status is
// surfaced directly: a reachable server's explicit error is authoritative.
func (f *Fetcher) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	body, err := f.client.Get(ctx, url)
	if err == nil {
		f.tracker.ReportRestored()
		if f.policy.Cacheable(url) {
			f.writeThrough(url, body)
		}
		return body, nil
	}

	if !apiclient.IsTransportError(err) {
		return nil, err
	}

	f.tracker.ReportLoss()

	if f.policy.Cacheable(url) {
		entry, cacheErr := f.store.CachedEndpoint(url)
		if cacheErr != nil {
			f.log.Warn(diag.CategoryFetch, "cache lookup failed", map[string]string{
				"url": url, "error": cacheErr.Error(),
			})
		} else if entry != nil {
			f.log.Info(diag.CategoryFetch, "served from cache", map[string]string{
				"url": url, "cache_key": entry.URL,
			})
			return entry.Data, nil
		}
	}

	return nil, err
}

// writeThrough caches the response in the background. A cache-write failure
// must never fail the read; it is captured into diagnostics and discarded.
func (f *Fetcher) writeThrough(url string, body []byte) {
	data := make([]byte, len(body))
	copy(data, body)

	f.spawn(func() {
		if err := f.store.CacheEndpoint(url, data); err != nil {
			f.log.Warn(diag.CategoryCache, "write-through failed", map[string]string{
				"url": url, "error": err.Error(),
			})
		}
	})
}
