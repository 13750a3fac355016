package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fieldops/fieldsync/internal/models"
)

// MaxCacheAge is the single staleness bound for every cached read.
// There are no per-endpoint overrides.
const MaxCacheAge = 4 * time.Hour

// Metadata keys, one per cached collection.
const (
	MetaBookings = "bookings"
	MetaRoutes   = "routes"
	MetaProfile  = "profile"
)

// profileKey is the sentinel row id for the single-record profile cache.
const profileKey = "profile"

// cacheMetadataVersion is reserved for schema evolution of cached payloads.
const cacheMetadataVersion = 1

// CacheBookings replaces the bookings cache wholesale and stamps fresh metadata
func (s *Store) CacheBookings(records []models.CachedRecord) error {
	return s.replaceCollection("bookings", MetaBookings, records)
}

// CachedBookings returns the cached bookings collection, or nil when the
// cache is absent or stale
func (s *Store) CachedBookings() ([]models.CachedRecord, error) {
	return s.cachedCollection("bookings", MetaBookings)
}

// CacheRoutes replaces the routes cache wholesale and stamps fresh metadata
func (s *Store) CacheRoutes(records []models.CachedRecord) error {
	return s.replaceCollection("routes", MetaRoutes, records)
}

// CachedRoutes returns the cached routes collection, or nil when the
// cache is absent or stale
func (s *Store) CachedRoutes() ([]models.CachedRecord, error) {
	return s.cachedCollection("routes", MetaRoutes)
}

// CacheProfile replaces the cached worker profile
func (s *Store) CacheProfile(data json.RawMessage) error {
	records := []models.CachedRecord{{ID: profileKey, Data: data}}
	return s.replaceCollection("profile", MetaProfile, records)
}

// CachedProfile returns the cached profile payload, or nil when absent or stale
func (s *Store) CachedProfile() (json.RawMessage, error) {
	records, err := s.cachedCollection("profile", MetaProfile)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == profileKey {
			return r.Data, nil
		}
	}
	return nil, nil
}

// CacheMetadataFor returns the metadata row for a collection, or nil if the
// collection was never cached
func (s *Store) CacheMetadataFor(key string) (*models.CacheMetadata, error) {
	var meta models.CacheMetadata
	err := s.conn.QueryRow(`
		SELECT key, last_synced_at, version FROM cache_metadata WHERE key = ?
	`, key).Scan(&meta.Key, &meta.LastSyncedAt, &meta.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// ClearOfflineData empties every cache table and its metadata.
// The mutation queue is deliberately untouched: pending writes survive logout.
func (s *Store) ClearOfflineData() error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"bookings", "routes", "profile", "endpoint_cache", "cache_metadata"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// replaceCollection swaps the full contents of a cache table and stamps
// metadata in the same transaction.
func (s *Store) replaceCollection(table, metaKey string, records []models.CachedRecord) error {
	now := s.now()

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s (id, data, cached_at) VALUES (?, ?, ?)`, table))
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, r := range records {
		data := r.Data
		if data == nil {
			data = json.RawMessage("{}")
		}
		if _, err := stmt.Exec(r.ID, string(data), now); err != nil {
			return fmt.Errorf("insert %s %s: %w", table, r.ID, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO cache_metadata (key, last_synced_at, version)
		VALUES (?, ?, ?)
	`, metaKey, now, cacheMetadataVersion); err != nil {
		return fmt.Errorf("stamp metadata %s: %w", metaKey, err)
	}

	return tx.Commit()
}

// cachedCollection returns a collection if its metadata exists and is fresh.
// A nil slice with nil error means "no usable cache"; callers fall through
// to other sources.
func (s *Store) cachedCollection(table, metaKey string) ([]models.CachedRecord, error) {
	meta, err := s.CacheMetadataFor(metaKey)
	if err != nil {
		return nil, err
	}
	if meta == nil || s.now().Sub(meta.LastSyncedAt) > MaxCacheAge {
		return nil, nil
	}

	rows, err := s.conn.Query(fmt.Sprintf(`SELECT id, data, cached_at FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.CachedRecord
	for rows.Next() {
		var r models.CachedRecord
		var data string
		if err := rows.Scan(&r.ID, &data, &r.CachedAt); err != nil {
			return nil, err
		}
		r.Data = json.RawMessage(data)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Metadata and table can diverge if a write was interrupted; an empty
	// table is "no data", not an empty result.
	return records, nil
}
