package driven

import (
	"context"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
)

// RunStore persists run history. History is informational only: runs
// never restore state from it.
type RunStore interface {
	// SaveRun stores a completed run record.
	SaveRun(ctx context.Context, record *domain.RunRecord) error

	// GetRun retrieves a run record by ID.
	// Returns domain.ErrNotFound if no such run exists.
	GetRun(ctx context.Context, id string) (*domain.RunRecord, error)

	// ListRuns returns the most recent runs, newest first.
	// A limit of 0 returns all runs.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
