package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/logger"
)

// DefaultPollInterval is the fixed delay between staging directory scans.
const DefaultPollInterval = 300 * time.Millisecond

// DefaultDownloadTimeout bounds how long a single transfer may take to
// appear finished in the staging directory.
const DefaultDownloadTimeout = 90 * time.Second

// Watcher detects completion of an in-flight transfer from filesystem
// side effects. The transfer mechanism offers no completion callback,
// so a bounded poll of the staging directory is the source of truth.
// An fsnotify watch only wakes the poll early; missing or failing
// notifications degrade latency, never correctness.
type Watcher struct {
	interval time.Duration
}

// NewWatcher creates a watcher polling at the given interval.
// A non-positive interval falls back to DefaultPollInterval.
func NewWatcher(interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{interval: interval}
}

// Interval returns the configured poll interval.
func (w *Watcher) Interval() time.Duration {
	return w.interval
}

// WaitForDocument blocks until the staging directory contains at least
// one finished document and no in-progress files, then returns the path
// of the most recently modified finished file.
//
// Returns domain.ErrWatchTimeout when the timeout elapses first, and
// domain.ErrCancelled when ctx is cancelled between polls. Transient
// directory read errors (the directory briefly unreadable during a
// write) are retried, not surfaced.
func (w *Watcher) WaitForDocument(ctx context.Context, stagingDir string, timeout time.Duration) (string, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Best-effort early wake-up. The poll below stays authoritative.
	var wake <-chan fsnotify.Event
	if fw, err := fsnotify.NewWatcher(); err == nil {
		if err := fw.Add(stagingDir); err == nil {
			wake = fw.Events
		} else {
			logger.Debug("watch %s: %v", stagingDir, err)
		}
		defer fw.Close()
	}

	for {
		if path, ok := w.scan(stagingDir); ok {
			return path, nil
		}

		select {
		case <-ctx.Done():
			return "", domain.ErrCancelled
		case <-deadline.C:
			return "", domain.ErrWatchTimeout
		case <-ticker.C:
		case <-wake:
		}
	}
}

// scan reports whether the staging directory holds a completed
// transfer, returning the newest finished file when it does.
func (w *Watcher) scan(stagingDir string) (string, bool) {
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		// Directory briefly unreadable during a write; retry next poll.
		logger.Debug("read staging dir: %v", err)
		return "", false
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if domain.HasInProgressExtension(name) {
			return "", false
		}
		if !domain.HasDocumentExtension(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", false
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(stagingDir, name)
			newestMod = info.ModTime()
		}
	}

	return newest, newest != ""
}
