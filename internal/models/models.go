package models

import (
	"encoding/json"
	"time"
)

// MutationStatus represents the lifecycle state of a queued mutation
type MutationStatus string

const (
	StatusPending  MutationStatus = "pending"
	StatusSyncing  MutationStatus = "syncing"
	StatusSynced   MutationStatus = "synced"
	StatusConflict MutationStatus = "conflict"
	StatusFailed   MutationStatus = "failed"
)

// Valid reports whether s is one of the five known statuses.
func (s MutationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSyncing, StatusSynced, StatusConflict, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is an end state for a drain run.
// Note that conflict and failed rows stay in the queue until cleared.
func (s MutationStatus) Terminal() bool {
	return s == StatusSynced || s == StatusConflict || s == StatusFailed
}

// CarriesError reports whether the status is allowed to carry an error string.
func (s MutationStatus) CarriesError() bool {
	return s == StatusConflict || s == StatusFailed
}

// Method represents an HTTP method eligible for the mutation queue
type Method string

const (
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
)

// Valid reports whether m is one of the four write methods.
func (m Method) Valid() bool {
	switch m {
	case MethodPut, MethodPatch, MethodPost, MethodDelete:
		return true
	}
	return false
}

// PendingMutation is a local write captured while offline, replayed on drain
type PendingMutation struct {
	ID         int64           `json:"id"`
	Method     Method          `json:"method"`
	URL        string          `json:"url"`
	Body       json.RawMessage `json:"body,omitempty"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Status     MutationStatus  `json:"status"`
	RetryCount int             `json:"retry_count"`
	Error      string          `json:"error,omitempty"`
}

// MutationInput is the caller-supplied part of a queued mutation.
// The store stamps id, created_at, status and retry_count on enqueue.
type MutationInput struct {
	Method     Method
	URL        string
	Body       json.RawMessage
	EntityType string
	EntityID   string
}

// CachedRecord is one cached business entity (or a whole-collection snapshot)
type CachedRecord struct {
	ID       string          `json:"id"`
	Data     json.RawMessage `json:"data"`
	CachedAt time.Time       `json:"cached_at"`
}

// EndpointCacheEntry is a generic response cache row keyed by full request URL
type EndpointCacheEntry struct {
	URL      string          `json:"url"`
	Data     json.RawMessage `json:"data"`
	CachedAt time.Time       `json:"cached_at"`
}

// CacheMetadata tracks per-collection sync freshness
type CacheMetadata struct {
	Key          string    `json:"key"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	Version      int       `json:"version"`
}

// DebugLevel represents the severity of a debug log entry
type DebugLevel string

const (
	DebugLevelInfo  DebugLevel = "info"
	DebugLevelWarn  DebugLevel = "warn"
	DebugLevelError DebugLevel = "error"
)

// DebugEntry is one row of the local diagnostic log
type DebugEntry struct {
	ID        int64           `json:"id"`
	Category  string          `json:"category"`
	Level     DebugLevel      `json:"level"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
