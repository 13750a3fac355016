// Package diag is the failure-observability surface: a best-effort local
// debug log and a bug report composer. Nothing here is ever load-bearing:
// every storage error is swallowed so that logging cannot cause a
// user-visible failure.
package diag

import (
	"encoding/json"
	"log/slog"

	"github.com/fieldops/fieldsync/internal/models"
	"github.com/fieldops/fieldsync/internal/store"
)

// Log categories used across the engine.
const (
	CategorySync  = "sync"
	CategoryFetch = "fetch"
	CategoryCache = "cache"
	CategoryQueue = "queue"
)

// Logger appends diagnostic entries to the local store, best-effort.
type Logger struct {
	store *store.Store
}

// NewLogger creates a diagnostic logger over the local store.
// A nil store yields a logger that only mirrors to slog.
func NewLogger(s *store.Store) *Logger {
	return &Logger{store: s}
}

// Log appends one entry. Storage failures are dropped after a debug-level
// mirror; callers never see them.
func (l *Logger) Log(category string, level models.DebugLevel, message string, data any) {
	var payload json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = b
		}
	}

	slog.Debug("diag: "+message, "category", category, "level", string(level))

	if l.store == nil {
		return
	}
	if err := l.store.InsertDebugEntry(category, level, message, payload); err != nil {
		slog.Debug("diag: drop entry", "err", err)
	}
}

// Info logs at info level.
func (l *Logger) Info(category, message string, data any) {
	l.Log(category, models.DebugLevelInfo, message, data)
}

// Warn logs at warn level.
func (l *Logger) Warn(category, message string, data any) {
	l.Log(category, models.DebugLevelWarn, message, data)
}

// Error logs at error level.
func (l *Logger) Error(category, message string, data any) {
	l.Log(category, models.DebugLevelError, message, data)
}
