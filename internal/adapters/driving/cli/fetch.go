package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/brimr-tools/fundfetch/internal/adapters/driving/tui"
	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
)

// recentYearCount is how many of the newest available years --recent selects.
const recentYearCount = 5

var (
	fetchOutput   string
	fetchHeadless bool
	fetchRecent   bool
	fetchPlain    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [year...]",
	Short: "Download workbooks for the given years",
	Long: `Downloads the NIH funding workbooks for the given years and files each
one into its category directory under the output root.

With no arguments every available year is fetched; availability is
probed from the current year backwards. Files already present at their
final path are skipped, so reruns only fill gaps.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "",
		"Output directory (default from config, else ~/Downloads/BRIMR_Data)")
	fetchCmd.Flags().BoolVar(&fetchHeadless, "headless", true,
		"Run the browser without a visible window")
	fetchCmd.Flags().BoolVar(&fetchRecent, "recent", false,
		fmt.Sprintf("Only the %d most recent available years", recentYearCount))
	fetchCmd.Flags().BoolVar(&fetchPlain, "plain", false,
		"Plain-text progress instead of the interactive view")
	rootCmd.AddCommand(fetchCmd)
}

// runResult carries the worker's outcome across the goroutine boundary.
type runResult struct {
	summary *domain.RunSummary
	err     error
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetcher == nil || prober == nil {
		return errors.New("fetch service not configured")
	}
	if fetchRecent && len(args) > 0 {
		return fmt.Errorf("%w: --recent cannot be combined with explicit years", domain.ErrInvalidInput)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	years, err := selectYears(ctx, args)
	if err != nil {
		return err
	}

	outputRoot, err := resolveOutputRoot()
	if err != nil {
		return err
	}

	headless := fetchHeadless
	if !cmd.Flags().Changed("headless") && configStore != nil {
		if _, ok := configStore.Get(driven.ConfigHeadless); ok {
			headless = configStore.GetBool(driven.ConfigHeadless)
		}
	}

	params := domain.RunParams{
		Years:      years,
		OutputRoot: outputRoot,
		Headless:   headless,
	}

	done := make(chan runResult, 1)
	go func() {
		summary, err := fetcher.Run(ctx, params)
		done <- runResult{summary: summary, err: err}
	}()

	if !fetchPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		if err := runInteractive(); err != nil {
			return err
		}
	} else {
		runPlain(cmd)
	}

	res := <-done
	if res.err != nil {
		return res.err
	}
	if fetchPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		printSummary(cmd, res.summary)
	}
	return nil
}

// runInteractive renders progress with the TUI until the terminal event.
func runInteractive() error {
	app := tui.NewApp(fetcher)
	if _, err := tea.NewProgram(app).Run(); err != nil {
		return fmt.Errorf("progress view: %w", err)
	}
	return nil
}

// runPlain prints each event on its own line until the terminal event.
func runPlain(cmd *cobra.Command) {
	for e := range fetcher.Events() {
		if e.Detail != "" {
			cmd.Printf("%s  (%s)\n", e.Headline, e.Detail)
		} else {
			cmd.Println(e.Headline)
		}
		if e.Terminal() {
			return
		}
	}
}

// printSummary writes the final counters.
func printSummary(cmd *cobra.Command, summary *domain.RunSummary) {
	if summary == nil {
		return
	}
	if summary.Cancelled {
		cmd.Println("\nRun cancelled.")
	}
	cmd.Printf("\nDownloaded: %d  Existed: %d  Failed: %d  Years without data: %d\n",
		summary.Downloaded, summary.Skipped, summary.Failed, summary.YearsWithoutData)
}

// selectYears resolves the run's year set from arguments or the probe.
func selectYears(ctx context.Context, args []string) ([]domain.Year, error) {
	if len(args) > 0 {
		return parseYears(args)
	}

	years := prober.DetectYears(ctx)
	if fetchRecent && len(years) > recentYearCount {
		years = years[:recentYearCount]
	}
	return years, nil
}

// parseYears validates explicit year arguments.
func parseYears(args []string) ([]domain.Year, error) {
	current := time.Now().Year()
	years := make([]domain.Year, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid year %q", domain.ErrInvalidInput, arg)
		}
		if n < int(domain.FirstYear) || n > current {
			return nil, fmt.Errorf("%w: year %d outside %d-%d", domain.ErrInvalidInput, n, domain.FirstYear, current)
		}
		years = append(years, domain.Year(n))
	}
	return years, nil
}

// resolveOutputRoot picks the output directory: flag, then config, then
// the default under the user's downloads folder.
func resolveOutputRoot() (string, error) {
	if fetchOutput != "" {
		return fetchOutput, nil
	}
	if configStore != nil {
		if root := configStore.GetString(driven.ConfigOutputRoot); root != "" {
			return root, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	return filepath.Join(home, "Downloads", "BRIMR_Data"), nil
}
