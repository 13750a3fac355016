package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldops/fieldsync/internal/apiclient"
	"github.com/fieldops/fieldsync/internal/connectivity"
	"github.com/fieldops/fieldsync/internal/diag"
	"github.com/fieldops/fieldsync/internal/store"
)

func newTestFetcher(t *testing.T, baseURL string) (*Fetcher, *store.Store, *connectivity.Tracker) {
	t.Helper()

	s, err := store.Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	tracker := connectivity.NewTracker()
	f := New(apiclient.New(baseURL, "", ""), s, nil, tracker, diag.NewLogger(s))
	f.spawn = func(fn func()) { fn() } // synchronous write-through in tests
	return f, s, tracker
}

// deadServerURL returns a URL nothing is listening on.
func deadServerURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return "http://" + addr
}

func TestFetchSuccessWritesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"b-1"}]`))
	}))
	defer srv.Close()

	f, s, tracker := newTestFetcher(t, srv.URL)

	body, err := f.Fetch(context.Background(), "/api/bookings?date=today")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != `[{"id":"b-1"}]` {
		t.Errorf("body = %s", body)
	}
	if !tracker.Online() {
		t.Error("success should mark connectivity online")
	}

	// Cached under the exact URL, query string included.
	entry, err := s.CachedEndpoint("/api/bookings?date=today")
	if err != nil {
		t.Fatalf("CachedEndpoint: %v", err)
	}
	if entry == nil || entry.URL != "/api/bookings?date=today" {
		t.Fatalf("write-through missing or keyed wrong: %+v", entry)
	}
	if string(entry.Data) != `[{"id":"b-1"}]` {
		t.Errorf("cached data = %s", entry.Data)
	}
}

func TestFetchUncacheableURLNotWrittenThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f, s, _ := newTestFetcher(t, srv.URL)

	if _, err := f.Fetch(context.Background(), "/api/admin/audit"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if entry, _ := s.CachedEndpoint("/api/admin/audit"); entry != nil {
		t.Errorf("uncacheable URL cached: %+v", entry)
	}
}

func TestFetchOfflineServesCache(t *testing.T) {
	f, s, tracker := newTestFetcher(t, deadServerURL(t))

	if err := s.CacheEndpoint("/api/bookings", json.RawMessage(`[{"id":"b-9"}]`)); err != nil {
		t.Fatalf("CacheEndpoint: %v", err)
	}

	body, err := f.Fetch(context.Background(), "/api/bookings")
	if err != nil {
		t.Fatalf("Fetch should serve cache offline: %v", err)
	}
	if string(body) != `[{"id":"b-9"}]` {
		t.Errorf("body = %s", body)
	}
	if tracker.Online() {
		t.Error("transport failure should mark connectivity offline")
	}
}

func TestFetchOfflineQueryFallsBackToBase(t *testing.T) {
	f, s, _ := newTestFetcher(t, deadServerURL(t))

	if err := s.CacheEndpoint("/api/bookings", json.RawMessage(`[1]`)); err != nil {
		t.Fatalf("CacheEndpoint: %v", err)
	}

	body, err := f.Fetch(context.Background(), "/api/bookings?date=today")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != `[1]` {
		t.Errorf("body = %s, want the base snapshot", body)
	}
}

func TestFetchOfflineStaleCachePropagatesError(t *testing.T) {
	f, s, _ := newTestFetcher(t, deadServerURL(t))

	if err := s.CacheEndpoint("/api/bookings", json.RawMessage(`[1]`)); err != nil {
		t.Fatalf("CacheEndpoint: %v", err)
	}
	// Age the entry past the staleness bound.
	aged := time.Now().Add(-store.MaxCacheAge - time.Hour)
	if _, err := s.Conn().Exec(`UPDATE endpoint_cache SET cached_at = ?`, aged); err != nil {
		t.Fatalf("age entry: %v", err)
	}

	_, err := f.Fetch(context.Background(), "/api/bookings")
	if err == nil {
		t.Fatal("stale cache must not mask the network error")
	}
	if !apiclient.IsTransportError(err) {
		t.Errorf("expected the original transport error, got %v", err)
	}
}

func TestFetchOfflineNoCachePropagatesError(t *testing.T) {
	f, _, _ := newTestFetcher(t, deadServerURL(t))

	_, err := f.Fetch(context.Background(), "/api/bookings")
	if err == nil {
		t.Fatal("expected error with no cache and no network")
	}
	if !apiclient.IsTransportError(err) {
		t.Errorf("expected the original transport error, got %v", err)
	}
}

func TestFetchHTTPErrorNeverFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f, s, _ := newTestFetcher(t, srv.URL)

	// A cached copy exists, but the server's answer is authoritative.
	if err := s.CacheEndpoint("/api/bookings", json.RawMessage(`[1]`)); err != nil {
		t.Fatalf("CacheEndpoint: %v", err)
	}

	_, err := f.Fetch(context.Background(), "/api/bookings")
	if err == nil {
		t.Fatal("expected error for HTTP 404")
	}
	var se *apiclient.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("expected StatusError 404, got %v", err)
	}
}
