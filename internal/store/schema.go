package store

// SchemaVersion is the current local database schema version
const SchemaVersion = 2

const schema = `
-- Per-collection record caches: last known server representation, replaced
-- wholesale on every successful read of the source endpoint.
CREATE TABLE IF NOT EXISTS bookings (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL DEFAULT '{}',
    cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS routes (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL DEFAULT '{}',
    cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profile (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL DEFAULT '{}',
    cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- One row per cached collection; gates staleness for the whole collection.
CREATE TABLE IF NOT EXISTS cache_metadata (
    key TEXT PRIMARY KEY,
    last_synced_at DATETIME NOT NULL,
    version INTEGER NOT NULL DEFAULT 1
);

-- Generic response cache keyed by the full request URL, query string included.
CREATE TABLE IF NOT EXISTS endpoint_cache (
    url TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    cached_at DATETIME NOT NULL
);

-- Durable queue of local writes awaiting replay against the remote API.
CREATE TABLE IF NOT EXISTS mutation_queue (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    method TEXT NOT NULL,
    url TEXT NOT NULL,
    body TEXT DEFAULT '',
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    retry_count INTEGER NOT NULL DEFAULT 0,
    error TEXT DEFAULT ''
);

-- Append-only diagnostic log, pruned to the most recent entries.
CREATE TABLE IF NOT EXISTS debug_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL,
    level TEXT NOT NULL DEFAULT 'info',
    message TEXT NOT NULL,
    data TEXT DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
