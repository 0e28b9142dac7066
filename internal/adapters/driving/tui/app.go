// Package tui renders live run progress in the terminal. It is a pure
// observer: the app drains the orchestrator's status events and never
// drives the run beyond requesting cancellation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brimr-tools/fundfetch/internal/adapters/driving/tui/styles"
	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driving"
)

// eventMsg wraps one status event from the orchestrator.
type eventMsg domain.StatusEvent

// eventsClosedMsg signals the event channel is exhausted.
type eventsClosedMsg struct{}

// App is the run progress view following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	fetcher driving.Fetcher
	events  <-chan domain.StatusEvent
	styles  *styles.Styles

	spinner  spinner.Model
	progress progress.Model

	headline string
	detail   string
	current  int
	total    int

	summary    *domain.RunSummary
	cancelling bool
	width      int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the progress view for one run. The fetcher is used
// only for Cancel; events are consumed from its event channel.
func NewApp(fetcher driving.Fetcher) *App {
	s := styles.DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	return &App{
		fetcher:  fetcher,
		events:   fetcher.Events(),
		styles:   s,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		headline: "Starting...",
	}
}

// Init starts the spinner and the event pump.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForEvent())
}

// waitForEvent blocks on the next status event.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-a.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if a.summary != nil {
				return a, tea.Quit
			}
			// Request cancellation and keep draining; the terminal
			// event arrives once Finishing completes.
			a.cancelling = true
			a.fetcher.Cancel()
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.progress.Width = msg.Width - 8
		if a.progress.Width > 60 {
			a.progress.Width = 60
		}
		return a, nil

	case eventMsg:
		e := domain.StatusEvent(msg)
		a.headline = e.Headline
		a.detail = e.Detail
		if e.HasProgress() {
			a.current = e.Current
			a.total = e.Total
		}
		if e.Terminal() {
			a.summary = e.Summary
			return a, tea.Quit
		}
		return a, a.waitForEvent()

	case eventsClosedMsg:
		return a, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case progress.FrameMsg:
		model, cmd := a.progress.Update(msg)
		a.progress = model.(progress.Model)
		return a, cmd
	}

	return a, nil
}

// View renders the live state.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("fundfetch"))
	b.WriteString("\n\n")

	if a.summary != nil {
		b.WriteString(renderSummary(a.styles, a.summary))
		return b.String()
	}

	headline := a.headline
	if a.cancelling {
		headline = "Cancelling... finishing current file"
	}

	b.WriteString(fmt.Sprintf("%s %s\n", a.spinner.View(), a.styles.Normal.Render(headline)))
	if a.detail != "" {
		b.WriteString("  " + a.styles.Muted.Render(a.detail) + "\n")
	}

	if a.total > 0 {
		b.WriteString("\n  ")
		b.WriteString(a.progress.ViewAs(float64(a.current) / float64(a.total)))
		b.WriteString(a.styles.Muted.Render(fmt.Sprintf("  %d/%d", a.current, a.total)))
		b.WriteString("\n")
	}

	b.WriteString("\n" + a.styles.Muted.Render("q to cancel") + "\n")
	return b.String()
}

// Summary returns the terminal summary once the run has finished.
func (a *App) Summary() *domain.RunSummary {
	return a.summary
}

// renderSummary formats the final counters.
func renderSummary(s *styles.Styles, sum *domain.RunSummary) string {
	var b strings.Builder

	if sum.Cancelled {
		b.WriteString(s.Warning.Render("Run cancelled") + "\n\n")
	} else {
		b.WriteString(s.Success.Render("Run complete") + "\n\n")
	}

	b.WriteString(s.Normal.Render(fmt.Sprintf("  Downloaded:         %d\n", sum.Downloaded)))
	b.WriteString(s.Normal.Render(fmt.Sprintf("  Already existed:    %d\n", sum.Skipped)))
	b.WriteString(s.Normal.Render(fmt.Sprintf("  Failed:             %d\n", sum.Failed)))
	b.WriteString(s.Normal.Render(fmt.Sprintf("  Years without data: %d\n", sum.YearsWithoutData)))
	return b.String()
}
