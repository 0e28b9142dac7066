package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the years with published workbooks",
	Long: `Probes brimr.org for each yearly edition, newest first, and prints the
years that respond. When nothing responds (offline, site down) a
configured fallback range is printed instead.`,
	RunE: runYears,
}

func init() {
	rootCmd.AddCommand(yearsCmd)
}

func runYears(cmd *cobra.Command, _ []string) error {
	if prober == nil {
		return errors.New("probe service not configured")
	}

	for _, year := range prober.DetectYears(cmd.Context()) {
		cmd.Println(year)
	}
	return nil
}
