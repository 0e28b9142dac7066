package driving

import (
	"context"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
)

// Fetcher drives download runs. Only one run may be active at a time;
// starting a second returns domain.ErrRunInProgress.
type Fetcher interface {
	// Run executes one complete fetch over the given years, blocking
	// until the run reaches Finishing. The returned summary is always
	// non-nil when the run started, including on cancellation and on
	// fatal errors surfaced after cleanup.
	Run(ctx context.Context, params domain.RunParams) (*domain.RunSummary, error)

	// Cancel requests cancellation of the active run. The worker reaches
	// Finishing within roughly one completion-poll interval plus one
	// pending network call; no further transfers begin. Safe to call
	// when no run is active.
	Cancel()

	// Events returns the observer channel. Events arrive in production
	// order; the worker never blocks on a slow observer. The channel is
	// closed when the fetcher itself is closed, not between runs.
	Events() <-chan domain.StatusEvent

	// Running reports whether a run is currently active.
	Running() bool
}
