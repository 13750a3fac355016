package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldops/fieldsync/internal/models"
)

// ErrMutationNotFound is returned when a queue operation targets a missing row.
var ErrMutationNotFound = errors.New("mutation not found")

// EnqueueMutation appends a local write to the durable queue and returns the
// assigned id. The row is stamped pending with a zero retry count; the body is
// captured as-is and never re-derived.
func (s *Store) EnqueueMutation(input models.MutationInput) (int64, error) {
	if !input.Method.Valid() {
		return 0, fmt.Errorf("invalid mutation method %q", input.Method)
	}
	if input.URL == "" {
		return 0, fmt.Errorf("mutation url is required")
	}

	body := ""
	if input.Body != nil {
		body = string(input.Body)
	}

	result, err := s.conn.Exec(`
		INSERT INTO mutation_queue (method, url, body, entity_type, entity_id, created_at, status, retry_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, '')
	`, string(input.Method), input.URL, body, input.EntityType, input.EntityID, s.now(), string(models.StatusPending))
	if err != nil {
		return 0, fmt.Errorf("enqueue mutation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// PendingMutations returns the drain working set: pending and failed rows in
// FIFO order. Rows left syncing by a crash are excluded; the sync engine is
// responsible for reverting those itself on abort.
func (s *Store) PendingMutations() ([]models.PendingMutation, error) {
	return s.Mutations(ListMutationsOptions{
		Status: []models.MutationStatus{models.StatusPending, models.StatusFailed},
	})
}

// PendingMutationsByEntity returns the unsynced working set for one entity,
// used to flag "this record has local changes" in listings.
func (s *Store) PendingMutationsByEntity(entityID string) ([]models.PendingMutation, error) {
	return s.Mutations(ListMutationsOptions{
		Status:   []models.MutationStatus{models.StatusPending, models.StatusFailed},
		EntityID: entityID,
	})
}

// PendingCount returns the size of the drain working set.
func (s *Store) PendingCount() (int, error) {
	var count int
	err := s.conn.QueryRow(`
		SELECT COUNT(*) FROM mutation_queue WHERE status IN (?, ?)
	`, string(models.StatusPending), string(models.StatusFailed)).Scan(&count)
	return count, err
}

// UpdateMutationStatus moves a mutation to the given status. Only conflict and
// failed rows carry an error string; every other transition clears it.
func (s *Store) UpdateMutationStatus(id int64, status models.MutationStatus, errMsg string) error {
	if !status.Valid() {
		return fmt.Errorf("invalid mutation status %q", status)
	}
	if !status.CarriesError() {
		errMsg = ""
	}

	result, err := s.conn.Exec(`
		UPDATE mutation_queue SET status = ?, error = ? WHERE id = ?
	`, string(status), errMsg, id)
	if err != nil {
		return fmt.Errorf("update mutation %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update mutation %d: %w", id, ErrMutationNotFound)
	}
	return nil
}

// IncrementRetryCount bumps the retry counter for a mutation. It is never reset.
func (s *Store) IncrementRetryCount(id int64) error {
	result, err := s.conn.Exec(`
		UPDATE mutation_queue SET retry_count = retry_count + 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("increment retry %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("increment retry %d: %w", id, ErrMutationNotFound)
	}
	return nil
}

// RemoveSyncedMutations deletes every synced row and returns how many were
// removed. Called after the UI has acknowledged a successful sync, never
// automatically.
func (s *Store) RemoveSyncedMutations() (int, error) {
	result, err := s.conn.Exec(`
		DELETE FROM mutation_queue WHERE status = ?
	`, string(models.StatusSynced))
	if err != nil {
		return 0, fmt.Errorf("remove synced: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(rows), nil
}

// ClearMutations empties the queue unconditionally.
func (s *Store) ClearMutations() error {
	_, err := s.conn.Exec(`DELETE FROM mutation_queue`)
	return err
}

// GetMutation returns a single mutation by id.
func (s *Store) GetMutation(id int64) (*models.PendingMutation, error) {
	row := s.conn.QueryRow(`
		SELECT id, method, url, body, entity_type, entity_id, created_at, status, retry_count, error
		FROM mutation_queue WHERE id = ?
	`, id)

	m, err := scanMutation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mutation %d: %w", id, ErrMutationNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMutationsOptions contains filter options for listing queue rows
type ListMutationsOptions struct {
	Status   []models.MutationStatus
	EntityID string
	Limit    int
}

// Mutations returns queue rows matching the filter, in FIFO order by
// created_at with id as tiebreaker. The queue never reorders.
func (s *Store) Mutations(opts ListMutationsOptions) ([]models.PendingMutation, error) {
	query := `SELECT id, method, url, body, entity_type, entity_id, created_at, status, retry_count, error
	          FROM mutation_queue WHERE 1=1`
	var args []interface{}

	if len(opts.Status) > 0 {
		placeholders := make([]string, len(opts.Status))
		for i, st := range opts.Status {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		query += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ","))
	}

	if opts.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, opts.EntityID)
	}

	query += " ORDER BY created_at ASC, id ASC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mutations []models.PendingMutation
	for rows.Next() {
		m, err := scanMutation(rows)
		if err != nil {
			return nil, err
		}
		mutations = append(mutations, *m)
	}
	return mutations, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMutation(row rowScanner) (*models.PendingMutation, error) {
	var m models.PendingMutation
	var method, status, body string

	err := row.Scan(&m.ID, &method, &m.URL, &body, &m.EntityType, &m.EntityID,
		&m.CreatedAt, &status, &m.RetryCount, &m.Error)
	if err != nil {
		return nil, err
	}

	m.Method = models.Method(method)
	m.Status = models.MutationStatus(status)
	if body != "" {
		m.Body = json.RawMessage(body)
	}
	return &m, nil
}
