package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brimr-tools/fundfetch/internal/adapters/driven/storage/memory"
	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
)

// --- Mock browser implementations ---

// mockSession implements driven.BrowserSession. StartTransfer writes
// the linked file straight into the staging directory unless the URL
// is listed in stalled.
type mockSession struct {
	mu         sync.Mutex
	stagingDir string

	links   map[string][]string // pageURL -> hyperlinks
	navErrs map[string]error    // pageURL -> navigation error
	stalled map[string]bool     // URLs whose transfer never finishes

	visited   []string
	transfers []string
	closed    bool
}

func (m *mockSession) DocumentLinks(_ context.Context, pageURL string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visited = append(m.visited, pageURL)
	if err := m.navErrs[pageURL]; err != nil {
		return nil, err
	}
	return m.links[pageURL], nil
}

func (m *mockSession) StartTransfer(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, url)
	if m.stalled[url] {
		return nil // Transfer started but never lands a file.
	}
	name := domain.FilenameFromURL(url)
	return os.WriteFile(filepath.Join(m.stagingDir, name), []byte("xls"), 0o644)
}

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSession) transferCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transfers)
}

// mockFactory implements driven.BrowserFactory.
type mockFactory struct {
	session   *mockSession
	launchErr error
}

func (f *mockFactory) Launch(_ context.Context, stagingDir string, _ bool) (driven.BrowserSession, error) {
	if f.launchErr != nil {
		return nil, f.launchErr
	}
	f.session.stagingDir = stagingDir
	return f.session, nil
}

var _ driven.BrowserFactory = (*mockFactory)(nil)

func fastOptions() FetchOptions {
	return FetchOptions{
		PollInterval:    10 * time.Millisecond,
		DownloadTimeout: 300 * time.Millisecond,
	}
}

// drainEvents closes the service and collects every queued event.
func drainEvents(svc *FetchService) []domain.StatusEvent {
	svc.Close()
	var events []domain.StatusEvent
	for e := range svc.Events() {
		events = append(events, e)
	}
	return events
}

func pageFor(y domain.Year) string { return y.PageURL() }

func TestFetchService_Run(t *testing.T) {
	t.Run("downloads, classifies and places files", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {
					"https://brimr.org/files/Worldwide.xlsx",
					"https://brimr.org/files/Biochemistry_PI.xls",
					"https://brimr.org/files/Worldwide.xlsx", // duplicate
					"https://brimr.org/about/",               // not a document
				},
			},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Downloaded)
		assert.Equal(t, 0, summary.Failed)
		assert.Equal(t, 0, summary.Skipped)
		assert.False(t, summary.Cancelled)

		assert.FileExists(t, filepath.Join(out, "2022", "01_Source_Data", "Worldwide.xlsx"))
		assert.FileExists(t, filepath.Join(out, "2022", "06_PI_Rankings", "Biochemistry_PI.xls"))

		// Staging is removed in Finishing, session released.
		assert.NoDirExists(t, filepath.Join(out, stagingDirName))
		assert.True(t, session.closed)
	})

	t.Run("skips files whose final path exists", func(t *testing.T) {
		out := t.TempDir()
		existing := filepath.Join(out, "2022", "01_Source_Data", "Worldwide.xlsx")
		require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
		require.NoError(t, os.WriteFile(existing, []byte("already here"), 0o644))

		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {"https://brimr.org/files/Worldwide.xlsx"},
			},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Skipped)
		assert.Equal(t, 0, summary.Downloaded)
		// No transfer was triggered for the existing file.
		assert.Equal(t, 0, session.transferCount())
	})

	t.Run("years are processed oldest first", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{links: map[string][]string{}}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		_, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2023, 2021, 2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{pageFor(2021), pageFor(2022), pageFor(2023)}, session.visited)
	})

	t.Run("navigation failure skips the year and continues", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {"https://brimr.org/files/AllOrgs.xls"},
			},
			navErrs: map[string]error{
				pageFor(2021): fmt.Errorf("%w: timeout", domain.ErrNavigation),
			},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2021, 2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.YearsWithoutData)
		assert.Equal(t, 1, summary.Downloaded)
	})

	t.Run("year with no document links counts as without data", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {"https://brimr.org/about/"},
			},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.YearsWithoutData)
	})

	t.Run("transfer timeout on one file does not stop the next", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {
					"https://brimr.org/files/Stalls.xls",
					"https://brimr.org/files/AllOrgs.xls",
				},
			},
			stalled: map[string]bool{"https://brimr.org/files/Stalls.xls": true},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 1, summary.Downloaded)
		assert.FileExists(t, filepath.Join(out, "2022", "01_Source_Data", "AllOrgs.xls"))
	})

	t.Run("timeout on a year does not stop the next year", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2021): {"https://brimr.org/files/Stalls.xls"},
				pageFor(2022): {"https://brimr.org/files/AllOrgs.xls"},
			},
			stalled: map[string]bool{"https://brimr.org/files/Stalls.xls": true},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2021, 2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 1, summary.Downloaded)
	})

	t.Run("rejects a second run while one is active", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {"https://brimr.org/files/Stalls.xls"},
			},
			stalled: map[string]bool{"https://brimr.org/files/Stalls.xls": true},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, FetchOptions{
			PollInterval:    10 * time.Millisecond,
			DownloadTimeout: 2 * time.Second,
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = svc.Run(context.Background(), domain.RunParams{
				Years:      []domain.Year{2022},
				OutputRoot: out,
			})
		}()

		// Wait for the first run to become active.
		require.Eventually(t, svc.Running, time.Second, 5*time.Millisecond)

		_, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})
		assert.ErrorIs(t, err, domain.ErrRunInProgress)

		svc.Cancel()
		<-done
	})

	t.Run("launch failure is fatal but still finishes", func(t *testing.T) {
		out := t.TempDir()
		svc := NewFetchService(&mockFactory{launchErr: fmt.Errorf("no chromium")}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})

		assert.ErrorIs(t, err, domain.ErrNoSession)
		require.NotNil(t, summary)
		assert.NoDirExists(t, filepath.Join(out, stagingDirName))

		events := drainEvents(svc)
		require.NotEmpty(t, events)
		assert.True(t, events[len(events)-1].Terminal())
	})

	t.Run("invalid params are rejected with a terminal event", func(t *testing.T) {
		svc := NewFetchService(&mockFactory{session: &mockSession{}}, nil, fastOptions())

		_, err := svc.Run(context.Background(), domain.RunParams{OutputRoot: t.TempDir()})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.Run(context.Background(), domain.RunParams{Years: []domain.Year{2022}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		// Each rejected run still reaches Finishing, so observers that
		// drain until the terminal event are released.
		events := drainEvents(svc)
		require.Len(t, events, 2)
		for _, e := range events {
			assert.True(t, e.Terminal())
		}
	})

	t.Run("output root creation failure still emits the terminal event", func(t *testing.T) {
		// A regular file where a parent directory is needed makes both
		// MkdirAll calls fail.
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		svc := NewFetchService(&mockFactory{session: &mockSession{}}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: filepath.Join(blocker, "out"),
		})

		require.Error(t, err)
		require.NotNil(t, summary)

		events := drainEvents(svc)
		require.NotEmpty(t, events)
		assert.True(t, events[len(events)-1].Terminal())
	})
}

func TestFetchService_Cancellation(t *testing.T) {
	t.Run("cancel during a completion watch returns promptly", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {"https://brimr.org/files/AllOrgs.xls"},
			},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		// The cancel flag is reset when a run starts, so request it
		// mid-run while a transfer is stalling.
		session.stalled = map[string]bool{"https://brimr.org/files/AllOrgs.xls": true}

		go func() {
			time.Sleep(50 * time.Millisecond)
			svc.Cancel()
		}()

		start := time.Now()
		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.True(t, summary.Cancelled)
		// Bounded latency: one poll interval plus scheduling slack, far
		// below the 300ms download timeout.
		assert.Less(t, time.Since(start), 300*time.Millisecond)
	})

	t.Run("no further transfers begin after cancel", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2021): {"https://brimr.org/files/Stalls.xls"},
				pageFor(2022): {"https://brimr.org/files/AllOrgs.xls"},
			},
			stalled: map[string]bool{"https://brimr.org/files/Stalls.xls": true},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, FetchOptions{
			PollInterval:    10 * time.Millisecond,
			DownloadTimeout: 2 * time.Second,
		})

		go func() {
			time.Sleep(50 * time.Millisecond)
			svc.Cancel()
		}()

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2021, 2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.True(t, summary.Cancelled)
		// Only the stalled transfer was ever triggered.
		assert.Equal(t, 1, session.transferCount())
		assert.Equal(t, 0, summary.Downloaded)
	})

	t.Run("context cancellation behaves like cancel", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {"https://brimr.org/files/Stalls.xls"},
			},
			stalled: map[string]bool{"https://brimr.org/files/Stalls.xls": true},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, FetchOptions{
			PollInterval:    10 * time.Millisecond,
			DownloadTimeout: 2 * time.Second,
		})

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		summary, err := svc.Run(ctx, domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})

		require.NoError(t, err)
		assert.True(t, summary.Cancelled)
	})
}

func TestFetchService_Events(t *testing.T) {
	t.Run("terminal event carries the summary", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {"https://brimr.org/files/AllOrgs.xls"},
			},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})
		require.NoError(t, err)

		events := drainEvents(svc)
		require.NotEmpty(t, events)

		last := events[len(events)-1]
		require.True(t, last.Terminal())
		assert.Equal(t, *summary, *last.Summary)

		// Exactly one terminal event, and it is the last one.
		for _, e := range events[:len(events)-1] {
			assert.False(t, e.Terminal())
		}
	})

	t.Run("progress events carry a fraction", func(t *testing.T) {
		out := t.TempDir()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {
					"https://brimr.org/files/AllOrgs.xls",
					"https://brimr.org/files/Worldwide.xlsx",
				},
			},
		}
		svc := NewFetchService(&mockFactory{session: session}, nil, fastOptions())

		_, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})
		require.NoError(t, err)

		var sawProgress bool
		for _, e := range drainEvents(svc) {
			if e.HasProgress() {
				sawProgress = true
				assert.Equal(t, 2, e.Total)
			}
		}
		assert.True(t, sawProgress)
	})
}

func TestFetchService_RunHistory(t *testing.T) {
	t.Run("run record is persisted with the summary", func(t *testing.T) {
		out := t.TempDir()
		store := memory.NewRunStore()
		session := &mockSession{
			links: map[string][]string{
				pageFor(2022): {"https://brimr.org/files/AllOrgs.xls"},
			},
		}
		svc := NewFetchService(&mockFactory{session: session}, store, fastOptions())

		summary, err := svc.Run(context.Background(), domain.RunParams{
			Years:      []domain.Year{2022},
			OutputRoot: out,
		})
		require.NoError(t, err)

		runs, err := store.ListRuns(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, *summary, runs[0].Summary)
		assert.Equal(t, []domain.Year{2022}, runs[0].Years)
		assert.NotEmpty(t, runs[0].ID)
		assert.False(t, runs[0].FinishedAt.Before(runs[0].StartedAt))
	})
}
