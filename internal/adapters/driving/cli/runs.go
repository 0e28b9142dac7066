package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past download runs",
	Long:  `Prints the persisted history of download runs, newest first.`,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if runStore == nil {
		return errors.New("run history not configured")
	}

	records, err := runStore.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range records {
		cmd.Printf("%s  %s  years=%s  downloaded=%d existed=%d failed=%d no-data=%d%s\n",
			r.StartedAt.Format("2006-01-02 15:04"),
			shortID(r.ID),
			formatYears(r.Years),
			r.Summary.Downloaded, r.Summary.Skipped,
			r.Summary.Failed, r.Summary.YearsWithoutData,
			cancelledSuffix(r.Summary))
	}
	return nil
}

// shortID abbreviates a run UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatYears(years []domain.Year) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = y.String()
	}
	return strings.Join(parts, ",")
}

func cancelledSuffix(summary domain.RunSummary) string {
	if summary.Cancelled {
		return "  [cancelled]"
	}
	return ""
}
