package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun stores a completed run record. Years are stored as a JSON
// array; summary counters get their own columns so history can be
// inspected with plain SQL.
func (s *runStore) SaveRun(ctx context.Context, record *domain.RunRecord) error {
	yearsJSON, err := json.Marshal(record.Years)
	if err != nil {
		return fmt.Errorf("marshalling years: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, years, output_root, started_at, finished_at,
			downloaded, skipped, failed, years_without_data, cancelled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			years = excluded.years,
			output_root = excluded.output_root,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			downloaded = excluded.downloaded,
			skipped = excluded.skipped,
			failed = excluded.failed,
			years_without_data = excluded.years_without_data,
			cancelled = excluded.cancelled
	`, record.ID, string(yearsJSON), record.OutputRoot,
		record.StartedAt, record.FinishedAt,
		record.Summary.Downloaded, record.Summary.Skipped,
		record.Summary.Failed, record.Summary.YearsWithoutData,
		record.Summary.Cancelled)

	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun retrieves a run record by ID.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, years, output_root, started_at, finished_at,
		       downloaded, skipped, failed, years_without_data, cancelled
		FROM runs WHERE id = ?
	`, id)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return record, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive
// limit returns all runs.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	query := `
		SELECT id, years, output_root, started_at, finished_at,
		       downloaded, skipped, failed, years_without_data, cancelled
		FROM runs ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return records, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunRecord, error) {
	var record domain.RunRecord
	var yearsJSON string

	err := row.Scan(
		&record.ID, &yearsJSON, &record.OutputRoot,
		&record.StartedAt, &record.FinishedAt,
		&record.Summary.Downloaded, &record.Summary.Skipped,
		&record.Summary.Failed, &record.Summary.YearsWithoutData,
		&record.Summary.Cancelled,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(yearsJSON), &record.Years); err != nil {
		return nil, fmt.Errorf("unmarshalling years: %w", err)
	}
	return &record, nil
}
