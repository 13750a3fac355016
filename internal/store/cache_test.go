package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fieldops/fieldsync/internal/models"
)

func TestCacheAndReadBookings(t *testing.T) {
	s := newTestStore(t)

	records := []models.CachedRecord{
		{ID: "b-2", Data: json.RawMessage(`{"site":"north"}`)},
		{ID: "b-1", Data: json.RawMessage(`{"site":"south"}`)},
	}
	if err := s.CacheBookings(records); err != nil {
		t.Fatalf("CacheBookings: %v", err)
	}

	got, err := s.CachedBookings()
	if err != nil {
		t.Fatalf("CachedBookings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// Collections come back ordered by id.
	if got[0].ID != "b-1" || got[1].ID != "b-2" {
		t.Errorf("order = [%s %s], want [b-1 b-2]", got[0].ID, got[1].ID)
	}
	if string(got[0].Data) != `{"site":"south"}` {
		t.Errorf("data = %s", got[0].Data)
	}
}

func TestCacheReplacesWholesale(t *testing.T) {
	s := newTestStore(t)

	s.CacheRoutes([]models.CachedRecord{
		{ID: "r-1", Data: json.RawMessage(`{}`)},
		{ID: "r-2", Data: json.RawMessage(`{}`)},
	})
	if err := s.CacheRoutes([]models.CachedRecord{{ID: "r-3", Data: json.RawMessage(`{}`)}}); err != nil {
		t.Fatalf("CacheRoutes: %v", err)
	}

	got, err := s.CachedRoutes()
	if err != nil {
		t.Fatalf("CachedRoutes: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r-3" {
		t.Errorf("refresh did not replace previous snapshot: %+v", got)
	}
}

func TestCacheStaleness(t *testing.T) {
	s := newTestStore(t)
	cachedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	setClock(s, cachedAt)

	if err := s.CacheBookings([]models.CachedRecord{{ID: "b-1", Data: json.RawMessage(`{}`)}}); err != nil {
		t.Fatalf("CacheBookings: %v", err)
	}

	// Exactly at the bound the cache is still valid.
	setClock(s, cachedAt.Add(MaxCacheAge))
	got, err := s.CachedBookings()
	if err != nil {
		t.Fatalf("CachedBookings: %v", err)
	}
	if got == nil {
		t.Error("cache at exactly the age bound should still be served")
	}

	// One second past the bound it is stale.
	setClock(s, cachedAt.Add(MaxCacheAge+time.Second))
	got, err = s.CachedBookings()
	if err != nil {
		t.Fatalf("CachedBookings: %v", err)
	}
	if got != nil {
		t.Errorf("stale cache served: %+v", got)
	}
}

func TestCachedCollectionNeverSynced(t *testing.T) {
	s := newTestStore(t)

	got, err := s.CachedRoutes()
	if err != nil {
		t.Fatalf("CachedRoutes: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for never-synced collection, got %+v", got)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestStore(t)

	payload := json.RawMessage(`{"name":"Ada","region":"west"}`)
	if err := s.CacheProfile(payload); err != nil {
		t.Fatalf("CacheProfile: %v", err)
	}

	got, err := s.CachedProfile()
	if err != nil {
		t.Fatalf("CachedProfile: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("profile = %s, want %s", got, payload)
	}
}

func TestCacheMetadataStamped(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	setClock(s, at)

	s.CacheBookings(nil)

	meta, err := s.CacheMetadataFor(MetaBookings)
	if err != nil {
		t.Fatalf("CacheMetadataFor: %v", err)
	}
	if meta == nil {
		t.Fatal("metadata missing after cache write")
	}
	if !meta.LastSyncedAt.Equal(at) {
		t.Errorf("lastSyncedAt = %v, want %v", meta.LastSyncedAt, at)
	}

	meta, err = s.CacheMetadataFor(MetaRoutes)
	if err != nil {
		t.Fatalf("CacheMetadataFor: %v", err)
	}
	if meta != nil {
		t.Errorf("unexpected metadata for never-cached collection: %+v", meta)
	}
}

func TestClearOfflineDataKeepsQueue(t *testing.T) {
	s := newTestStore(t)

	s.CacheBookings([]models.CachedRecord{{ID: "b-1", Data: json.RawMessage(`{}`)}})
	s.CacheProfile(json.RawMessage(`{}`))
	s.CacheEndpoint("/api/bookings", json.RawMessage(`[]`))
	id := enqueue(t, s, models.MethodPost, "/api/bookings")

	if err := s.ClearOfflineData(); err != nil {
		t.Fatalf("ClearOfflineData: %v", err)
	}

	if got, _ := s.CachedBookings(); got != nil {
		t.Errorf("bookings cache survived clear: %+v", got)
	}
	if got, _ := s.CachedProfile(); got != nil {
		t.Errorf("profile cache survived clear: %s", got)
	}
	if entry, _ := s.CachedEndpoint("/api/bookings"); entry != nil {
		t.Errorf("endpoint cache survived clear: %+v", entry)
	}
	if _, err := s.GetMutation(id); err != nil {
		t.Errorf("queued mutation lost on cache clear: %v", err)
	}
}
