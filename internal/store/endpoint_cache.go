package store

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/fieldops/fieldsync/internal/models"
)

// CacheEndpoint stores a response body under the full request URL,
// query string included. Different filtered views of the same collection
// are genuinely different bodies and must not be conflated.
func (s *Store) CacheEndpoint(url string, data json.RawMessage) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO endpoint_cache (url, data, cached_at)
		VALUES (?, ?, ?)
	`, url, string(data), s.now())
	return err
}

// CachedEndpoint returns a fresh cached response for the URL.
// Lookup is exact-match first; when the URL carries a query string and the
// exact entry is missing or stale, the base URL (before '?') is tried once so
// a parameterized listing can still serve an unfiltered snapshot offline.
// Returns nil when nothing fresh exists.
func (s *Store) CachedEndpoint(url string) (*models.EndpointCacheEntry, error) {
	entry, err := s.endpointEntry(url)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return entry, nil
	}

	if i := strings.Index(url, "?"); i > 0 {
		return s.endpointEntry(url[:i])
	}
	return nil, nil
}

// InvalidateEndpointCache deletes every entry whose URL equals prefix or
// starts with prefix + "?". Used when a write must invalidate the cached
// reads of a resource family without waiting for staleness expiry.
func (s *Store) InvalidateEndpointCache(prefix string) error {
	_, err := s.conn.Exec(`
		DELETE FROM endpoint_cache WHERE url = ? OR url LIKE ?
	`, prefix, prefix+"?%")
	return err
}

// endpointEntry returns the exact-match entry if present and fresh.
func (s *Store) endpointEntry(url string) (*models.EndpointCacheEntry, error) {
	var entry models.EndpointCacheEntry
	var data string

	err := s.conn.QueryRow(`
		SELECT url, data, cached_at FROM endpoint_cache WHERE url = ?
	`, url).Scan(&entry.URL, &data, &entry.CachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.now().Sub(entry.CachedAt) > MaxCacheAge {
		return nil, nil
	}

	entry.Data = json.RawMessage(data)
	return &entry, nil
}
