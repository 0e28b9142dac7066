package domain

import (
	"path/filepath"
	"time"
)

// DownloadTask describes one accepted file transfer. Tasks are
// transient: created when a candidate link is accepted, discarded once
// the file reaches its final path or the task is marked failed/skipped.
type DownloadTask struct {
	// Year is the dataset edition the file belongs to.
	Year Year

	// SourceURL is the hyperlink the transfer is triggered from.
	SourceURL string

	// Category is the label the file classifies under.
	Category string

	// Filename is the sanitised target filename.
	Filename string
}

// FinalPath returns the file's categorised destination under the
// output root: {output}/{year}/{category}/{filename}.
func (t DownloadTask) FinalPath(outputRoot string) string {
	return filepath.Join(outputRoot, t.Year.String(), t.Category, t.Filename)
}

// RunParams are the caller-supplied parameters for one fetch run.
type RunParams struct {
	// Years to process. Processed oldest to newest regardless of the
	// order given here.
	Years []Year

	// OutputRoot is the directory the year/category tree is built under.
	OutputRoot string

	// Headless runs the browser without a visible window.
	Headless bool
}

// RunSummary carries the four outcome counters and the final value of
// the cancellation flag for one run.
type RunSummary struct {
	// Downloaded is the number of files moved to their final path.
	Downloaded int

	// Skipped is the number of files whose final path already existed.
	Skipped int

	// Failed is the number of files that timed out or could not be placed.
	Failed int

	// YearsWithoutData is the number of years whose page failed to load
	// or listed no document links.
	YearsWithoutData int

	// Cancelled records whether the run was cancelled mid-flight.
	Cancelled bool
}

// RunRecord is a persisted run outcome. Records are history, not a
// resume cursor: runs never restore state from them.
type RunRecord struct {
	// ID is the unique identifier for the run.
	ID string

	// Years lists the years the run was asked to process.
	Years []Year

	// OutputRoot is where the run placed files.
	OutputRoot string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run reached Finishing.
	FinishedAt time.Time

	// Summary holds the run's outcome counters.
	Summary RunSummary
}
