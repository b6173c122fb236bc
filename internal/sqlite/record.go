package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/rpggio/jobsite/internal/repository"
)

// RecordStore persists one module's records as JSON payloads in the shared
// records table. It implements record.Repository.
type RecordStore[T any] struct {
	db      *DB
	module  string
	id      func(T) string
	project func(T) string
	status  func(T) string
}

// NewRecordStore creates a store for the module described by spec.
func NewRecordStore[T any](db *DB, spec pipeline.Spec[T]) *RecordStore[T] {
	return &RecordStore[T]{
		db:      db,
		module:  spec.Module,
		id:      spec.ID,
		project: spec.Project,
		status:  spec.Status,
	}
}

// Create inserts a record
func (s *RecordStore[T]) Create(ctx context.Context, rec T) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", s.module, err)
	}

	now := time.Now()
	query := `
		INSERT INTO records (id, module, project_id, status, payload, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		s.id(rec),
		s.module,
		s.project(rec),
		s.status(rec),
		string(payload),
		now,
		now,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return repository.ErrForeignKeyViolation
	}
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (s *RecordStore[T]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE id = ? AND module = ?`, id, s.module,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return rec, repository.ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("failed to get record: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return rec, fmt.Errorf("failed to decode %s record %s: %w", s.module, id, err)
	}
	return rec, nil
}

// List returns every record of the module in insertion order
func (s *RecordStore[T]) List(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload FROM records WHERE module = ? ORDER BY rowid ASC`, s.module,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec T
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %s: %w", s.module, id, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}
	return records, nil
}

// Update replaces a record's payload
func (s *RecordStore[T]) Update(ctx context.Context, rec T) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", s.module, err)
	}

	query := `
		UPDATE records
		SET project_id = ?, status = ?, payload = ?, modified_at = ?
		WHERE id = ? AND module = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		s.project(rec),
		s.status(rec),
		string(payload),
		time.Now(),
		s.id(rec),
		s.module,
	)
	if isForeignKeyViolation(err) {
		return repository.ErrForeignKeyViolation
	}
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
