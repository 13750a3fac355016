package store

import (
	"encoding/json"
	"fmt"

	"github.com/fieldops/fieldsync/internal/models"
)

// maxDebugEntries bounds the diagnostic log; the oldest rows are pruned once
// the count exceeds it.
const maxDebugEntries = 500

// InsertDebugEntry appends a diagnostic entry and prunes everything older
// than the most recent maxDebugEntries rows.
func (s *Store) InsertDebugEntry(category string, level models.DebugLevel, message string, data json.RawMessage) error {
	payload := ""
	if data != nil {
		payload = string(data)
	}

	if _, err := s.conn.Exec(`
		INSERT INTO debug_log (category, level, message, data, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, category, string(level), message, payload, s.now()); err != nil {
		return fmt.Errorf("insert debug entry: %w", err)
	}

	if _, err := s.conn.Exec(`
		DELETE FROM debug_log WHERE id NOT IN (
			SELECT id FROM debug_log ORDER BY id DESC LIMIT ?
		)
	`, maxDebugEntries); err != nil {
		return fmt.Errorf("prune debug log: %w", err)
	}
	return nil
}

// RecentDebugEntries returns the last N entries in chronological order
// (oldest first).
func (s *Store) RecentDebugEntries(limit int) ([]models.DebugEntry, error) {
	if limit <= 0 || limit > maxDebugEntries {
		limit = maxDebugEntries
	}

	rows, err := s.conn.Query(`
		SELECT id, category, level, message, data, created_at
		FROM debug_log ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DebugEntry
	for rows.Next() {
		var e models.DebugEntry
		var level, data string
		if err := rows.Scan(&e.ID, &e.Category, &level, &e.Message, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Level = models.DebugLevel(level)
		if data != "" {
			e.Data = json.RawMessage(data)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

// DebugEntryCount returns the number of rows currently in the log.
func (s *Store) DebugEntryCount() (int, error) {
	var count int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM debug_log`).Scan(&count)
	return count, err
}

// ClearDebugLog removes every diagnostic entry.
func (s *Store) ClearDebugLog() error {
	_, err := s.conn.Exec(`DELETE FROM debug_log`)
	return err
}
