package cli

import (
	"context"
	"time"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driving"
)

// stubFetcher implements driving.Fetcher for command tests. Run
// returns a canned summary and the events channel carries a terminal
// event so the plain progress loop completes.
type stubFetcher struct {
	summary   *domain.RunSummary
	runErr    error
	gotParams domain.RunParams
	events    chan domain.StatusEvent
}

func newStubFetcher(summary *domain.RunSummary, runErr error) *stubFetcher {
	return &stubFetcher{
		summary: summary,
		runErr:  runErr,
		events:  make(chan domain.StatusEvent, 16),
	}
}

func (f *stubFetcher) Run(_ context.Context, params domain.RunParams) (*domain.RunSummary, error) {
	f.gotParams = params
	f.events <- domain.StatusEvent{Headline: "Starting browser...", Detail: "This may take a moment"}
	f.events <- domain.StatusEvent{Headline: "Download complete", Summary: f.summary}
	return f.summary, f.runErr
}

func (f *stubFetcher) Cancel() {}

func (f *stubFetcher) Events() <-chan domain.StatusEvent { return f.events }

func (f *stubFetcher) Running() bool { return false }

var _ driving.Fetcher = (*stubFetcher)(nil)

// stubProber implements driving.Prober with a fixed year set.
type stubProber struct {
	years []domain.Year
}

func (p *stubProber) DetectYears(context.Context) []domain.Year { return p.years }

var _ driving.Prober = (*stubProber)(nil)

// stubRunStore implements driven.RunStore over a fixed record list.
type stubRunStore struct {
	records  []domain.RunRecord
	gotLimit int
}

func (s *stubRunStore) SaveRun(context.Context, *domain.RunRecord) error { return nil }

func (s *stubRunStore) GetRun(context.Context, string) (*domain.RunRecord, error) {
	return nil, domain.ErrNotFound
}

func (s *stubRunStore) ListRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.gotLimit = limit
	if limit > 0 && len(s.records) > limit {
		return s.records[:limit], nil
	}
	return s.records, nil
}

var _ driven.RunStore = (*stubRunStore)(nil)

// setupTestServices installs stub services and returns a cleanup that
// restores the previous wiring and resets flag state.
func setupTestServices(s Services) func() {
	prevFetcher, prevProber := fetcher, prober
	prevRunStore, prevConfigStore := runStore, configStore

	SetServices(s)

	return func() {
		SetServices(Services{
			Fetcher:     prevFetcher,
			Prober:      prevProber,
			RunStore:    prevRunStore,
			ConfigStore: prevConfigStore,
		})
		fetchOutput = ""
		fetchHeadless = true
		fetchRecent = false
		fetchPlain = false
		runsLimit = 20
		verbose = false
		rootCmd.SetArgs(nil)
	}
}

func sampleRecord(id string, started time.Time) domain.RunRecord {
	return domain.RunRecord{
		ID:         id,
		Years:      []domain.Year{2023, 2024},
		OutputRoot: "/data/brimr",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Summary:    domain.RunSummary{Downloaded: 7, Skipped: 2, Failed: 1},
	}
}
