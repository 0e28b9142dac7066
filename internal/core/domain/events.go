package domain

// StatusEvent is an immutable progress message pushed to the observer
// channel. The worker never waits for the observer to consume events;
// they are queued and drained independently, in production order.
type StatusEvent struct {
	// Headline is the short status line, e.g. "Downloading 2023: 4/31".
	Headline string

	// Detail is the secondary line, e.g. the current filename.
	Detail string

	// Current and Total describe progress through the current year's
	// files. Both are zero when no progress fraction applies.
	Current int
	Total   int

	// Summary is non-nil only on the terminal event of a run.
	Summary *RunSummary
}

// HasProgress reports whether the event carries a progress fraction.
func (e StatusEvent) HasProgress() bool {
	return e.Total > 0
}

// Terminal reports whether this is the run's final summary event.
func (e StatusEvent) Terminal() bool {
	return e.Summary != nil
}
