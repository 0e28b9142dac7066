package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunInProgress indicates a fetch run is already active.
	// Only one run may be active at a time; new requests are rejected, not queued.
	ErrRunInProgress = errors.New("run in progress")

	// ErrWatchTimeout indicates no finished download appeared in the
	// staging directory before the watch timeout elapsed.
	ErrWatchTimeout = errors.New("download watch timed out")

	// ErrCancelled indicates the run was cancelled by the caller.
	ErrCancelled = errors.New("cancelled")

	// Browser session errors.

	// ErrNoSession indicates the browser session could not be acquired.
	// This is fatal for a run; the Finishing cleanup still executes.
	ErrNoSession = errors.New("browser session unavailable")

	// ErrNavigation indicates a year's page failed to load or render.
	// Non-fatal: the year is skipped and counted as "without data".
	ErrNavigation = errors.New("page navigation failed")

	// ErrSessionClosed indicates the browser session has been closed.
	ErrSessionClosed = errors.New("browser session closed")
)
