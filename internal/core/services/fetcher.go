package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driving"
	"github.com/brimr-tools/fundfetch/internal/logger"
)

// Ensure FetchService implements the interface.
var _ driving.Fetcher = (*FetchService)(nil)

// stagingDirName is the transient directory in-flight transfers land
// in before being moved to their categorised final location. It lives
// under the output root so moves stay on one volume.
const stagingDirName = "_staging"

// FetchService drives download runs: one dedicated worker executes the
// whole orchestration sequentially over a single long-lived browser
// session, while the observer drains status events on its own schedule.
//
// Only one run may be active at a time. Cancellation is cooperative:
// the worker checks the flag before each blocking step, and the run
// context unblocks an in-flight completion watch. The flag is never
// cleared mid-run.
type FetchService struct {
	factory    driven.BrowserFactory
	runStore   driven.RunStore // optional; nil disables run history
	classifier *domain.Classifier
	watcher    *Watcher
	events     *eventQueue

	downloadTimeout time.Duration

	mu        sync.Mutex
	running   bool
	cancelRun context.CancelFunc
	cancelled atomic.Bool
}

// FetchOptions tune a FetchService. Zero values select defaults.
type FetchOptions struct {
	// PollInterval is the completion-watch poll interval.
	PollInterval time.Duration

	// DownloadTimeout bounds the per-file completion watch.
	DownloadTimeout time.Duration
}

// NewFetchService creates a fetch service. The run store may be nil.
func NewFetchService(factory driven.BrowserFactory, runStore driven.RunStore, opts FetchOptions) *FetchService {
	timeout := opts.DownloadTimeout
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	return &FetchService{
		factory:         factory,
		runStore:        runStore,
		classifier:      domain.NewClassifier(),
		watcher:         NewWatcher(opts.PollInterval),
		events:          newEventQueue(),
		downloadTimeout: timeout,
	}
}

// Events returns the observer channel.
func (s *FetchService) Events() <-chan domain.StatusEvent {
	return s.events.Events()
}

// Running reports whether a run is currently active.
func (s *FetchService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Cancel requests cancellation of the active run. It sets the flag the
// worker checks between steps and cancels the run context so a blocked
// completion watch returns promptly. Safe to call when no run is
// active; the flag is reset when the next run starts.
func (s *FetchService) Cancel() {
	s.cancelled.Store(true)
	s.mu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.mu.Unlock()
}

// Close shuts down the event queue. Call once no further runs are needed.
func (s *FetchService) Close() {
	s.events.Close()
}

// Run executes one complete fetch. It blocks until the run reaches
// Finishing; the Finishing steps (session release, staging removal,
// summary emission, history record) execute on every exit path,
// including fatal errors.
func (s *FetchService) Run(ctx context.Context, params domain.RunParams) (*domain.RunSummary, error) {
	if err := s.acquireRunSlot(); err != nil {
		return nil, err
	}
	defer s.releaseRunSlot()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancelRun = cancel
	s.mu.Unlock()

	summary := &domain.RunSummary{}
	started := time.Now()

	// Fatal exits before the year loop still run Finishing so the
	// terminal summary event is emitted before the error surfaces;
	// observers drain until that event.
	if len(params.Years) == 0 {
		s.finish(ctx, nil, "", params, summary, started)
		return summary, fmt.Errorf("%w: no years selected", domain.ErrInvalidInput)
	}
	if params.OutputRoot == "" {
		s.finish(ctx, nil, "", params, summary, started)
		return summary, fmt.Errorf("%w: output root not set", domain.ErrInvalidInput)
	}

	staging := filepath.Join(params.OutputRoot, stagingDirName)

	if err := os.MkdirAll(params.OutputRoot, 0o755); err != nil {
		s.finish(ctx, nil, "", params, summary, started)
		return summary, fmt.Errorf("create output root: %w", err)
	}
	// Start from a clean staging directory; a previous crashed run may
	// have left artifacts behind.
	os.RemoveAll(staging)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		s.finish(ctx, nil, "", params, summary, started)
		return summary, fmt.Errorf("create staging dir: %w", err)
	}

	s.emit(domain.StatusEvent{Headline: "Starting browser...", Detail: "This may take a moment"})

	session, err := s.factory.Launch(ctx, staging, params.Headless)
	if err != nil {
		s.finish(ctx, nil, staging, params, summary, started)
		return summary, fmt.Errorf("%w: %v", domain.ErrNoSession, err)
	}

	s.processYears(ctx, session, params, staging, summary)
	s.finish(ctx, session, staging, params, summary, started)
	return summary, nil
}

// acquireRunSlot rejects a new run while one is active.
func (s *FetchService) acquireRunSlot() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrRunInProgress
	}
	s.running = true
	s.cancelled.Store(false)
	return nil
}

func (s *FetchService) releaseRunSlot() {
	s.mu.Lock()
	s.running = false
	s.cancelRun = nil
	s.mu.Unlock()
}

// isCancelled reads the cancellation flag and the context before each
// blocking step.
func (s *FetchService) isCancelled(ctx context.Context) bool {
	return s.cancelled.Load() || ctx.Err() != nil
}

// processYears runs the per-year loop, oldest to newest.
func (s *FetchService) processYears(
	ctx context.Context,
	session driven.BrowserSession,
	params domain.RunParams,
	staging string,
	summary *domain.RunSummary,
) {
	years := make([]domain.Year, len(params.Years))
	copy(years, params.Years)
	domain.SortYearsAscending(years)

	for _, year := range years {
		if s.isCancelled(ctx) {
			summary.Cancelled = true
			return
		}

		if err := os.MkdirAll(filepath.Join(params.OutputRoot, year.String()), 0o755); err != nil {
			logger.Warn("create year dir %s: %v", year, err)
			summary.YearsWithoutData++
			continue
		}

		s.emit(domain.StatusEvent{
			Headline: fmt.Sprintf("Loading %s page...", year),
			Detail:   year.PageURL(),
		})
		logger.Info("Processing year %s", year)

		links, err := session.DocumentLinks(ctx, year.PageURL())
		if err != nil {
			// Navigation failure is non-fatal: skip the year.
			logger.Warn("year %s: %v", year, err)
			summary.YearsWithoutData++
			s.emit(domain.StatusEvent{
				Headline: fmt.Sprintf("%s: page failed to load", year),
				Detail:   err.Error(),
			})
			continue
		}

		var accepted []string
		for _, link := range links {
			if domain.IsDocumentLink(link) {
				accepted = append(accepted, link)
			}
		}
		accepted = domain.DedupeLinks(accepted)

		if len(accepted) == 0 {
			logger.Warn("no document files found for %s", year)
			summary.YearsWithoutData++
			s.emit(domain.StatusEvent{
				Headline: fmt.Sprintf("%s: no document files found", year),
				Detail:   "Skipping this year",
			})
			continue
		}

		logger.Info("Found %d files for %s", len(accepted), year)
		s.emit(domain.StatusEvent{
			Headline: fmt.Sprintf("Found %d files for %s", len(accepted), year),
			Detail:   "Starting...",
		})

		if done := s.processFiles(ctx, session, params, staging, year, accepted, summary); done {
			return
		}
	}
}

// processFiles runs the per-file loop for one year, in enumeration
// order. Returns true when the run should stop (cancellation).
func (s *FetchService) processFiles(
	ctx context.Context,
	session driven.BrowserSession,
	params domain.RunParams,
	staging string,
	year domain.Year,
	links []string,
	summary *domain.RunSummary,
) bool {
	total := len(links)

	for i, link := range links {
		// Cancellation check 1 of 3: before starting the file.
		if s.isCancelled(ctx) {
			summary.Cancelled = true
			return true
		}

		name := domain.FilenameFromURL(link)
		if name == "" {
			logger.Warn("unusable link, no filename: %s", link)
			summary.Failed++
			continue
		}

		task := domain.DownloadTask{
			Year:      year,
			SourceURL: link,
			Category:  s.classifier.Classify(name),
			Filename:  name,
		}
		finalPath := task.FinalPath(params.OutputRoot)

		if _, err := os.Stat(finalPath); err == nil {
			summary.Skipped++
			s.emit(domain.StatusEvent{
				Headline: fmt.Sprintf("%s: %d/%d", year, i+1, total),
				Detail:   fmt.Sprintf("Exists: %s/%s", task.Category, task.Filename),
				Current:  i + 1,
				Total:    total,
			})
			continue
		}

		clearDir(staging)

		s.emit(domain.StatusEvent{
			Headline: fmt.Sprintf("Downloading %s: %d/%d", year, i+1, total),
			Detail:   task.Filename,
			Current:  i + 1,
			Total:    total,
		})

		if err := session.StartTransfer(ctx, link); err != nil {
			logger.Warn("transfer trigger failed for %s: %v", task.Filename, err)
			summary.Failed++
			continue
		}

		// Cancellation check 2 of 3: after the transfer trigger.
		if s.isCancelled(ctx) {
			summary.Cancelled = true
			return true
		}

		downloaded, err := s.watcher.WaitForDocument(ctx, staging, s.downloadTimeout)

		// Cancellation check 3 of 3: after the watcher returns.
		if errors.Is(err, domain.ErrCancelled) || s.isCancelled(ctx) {
			summary.Cancelled = true
			return true
		}
		if err != nil {
			logger.Warn("timeout waiting for %s", task.Filename)
			summary.Failed++
			continue
		}

		if err := placeFile(downloaded, finalPath); err != nil {
			logger.Warn("place %s: %v", task.Filename, err)
			summary.Failed++
			continue
		}

		summary.Downloaded++
		logger.Info("downloaded %s/%s", task.Category, task.Filename)
		s.emit(domain.StatusEvent{
			Headline: fmt.Sprintf("%s: %d/%d", year, i+1, total),
			Detail:   fmt.Sprintf("Done: %s/%s", task.Category, task.Filename),
			Current:  i + 1,
			Total:    total,
		})
	}

	return false
}

// finish is the Finishing state: release the session, remove staging,
// emit the terminal summary event, and record history. It executes on
// every exit path.
func (s *FetchService) finish(
	ctx context.Context,
	session driven.BrowserSession,
	staging string,
	params domain.RunParams,
	summary *domain.RunSummary,
	started time.Time,
) {
	if session != nil {
		if err := session.Close(); err != nil {
			logger.Warn("close browser session: %v", err)
		}
	}

	// Empty when the run failed before the staging dir was created.
	if staging != "" {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn("remove staging dir: %v", err)
		}
	}

	if s.cancelled.Load() {
		summary.Cancelled = true
	}

	headline := "Download complete"
	if summary.Cancelled {
		headline = "Download cancelled"
	}
	final := *summary
	s.emit(domain.StatusEvent{
		Headline: headline,
		Detail: fmt.Sprintf("Downloaded: %d | Existed: %d | Failed: %d | Years without data: %d",
			final.Downloaded, final.Skipped, final.Failed, final.YearsWithoutData),
		Summary: &final,
	})

	if s.runStore != nil {
		record := &domain.RunRecord{
			ID:         uuid.NewString(),
			Years:      params.Years,
			OutputRoot: params.OutputRoot,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Summary:    final,
		}
		// History is best effort; a failed save never fails the run.
		if err := s.runStore.SaveRun(context.WithoutCancel(ctx), record); err != nil {
			logger.Warn("save run record: %v", err)
		}
	}
}

// emit pushes a status event without ever blocking the worker.
func (s *FetchService) emit(e domain.StatusEvent) {
	s.events.Push(e)
}

// clearDir removes stale artifacts from the staging directory before a
// new transfer. Individual removal failures are tolerated.
func clearDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			logger.Debug("clear staging: %v", err)
		}
	}
}

// placeFile moves a finished download to its categorised final path,
// creating the category directory on demand. Falls back to copy+remove
// when rename crosses filesystems.
func placeFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create category dir: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyAndRemove(src, dst)
}

func copyAndRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
