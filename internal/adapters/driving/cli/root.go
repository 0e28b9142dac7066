// Package cli wires the cobra command tree. Commands depend only on
// driving ports and driven stores; the composition root injects the
// concrete services via SetServices before Execute.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driving"
	"github.com/brimr-tools/fundfetch/internal/logger"
)

// version is the build version, overridable at link time.
var version = "dev"

// verbose toggles debug logging for every command.
var verbose bool

// Services injected by the composition root.
var (
	fetcher     driving.Fetcher
	prober      driving.Prober
	runStore    driven.RunStore
	configStore driven.ConfigStore
)

// Services bundles everything the command tree needs.
type Services struct {
	Fetcher     driving.Fetcher
	Prober      driving.Prober
	RunStore    driven.RunStore
	ConfigStore driven.ConfigStore
}

// SetServices injects the services the commands run against.
func SetServices(s Services) {
	fetcher = s.Fetcher
	prober = s.Prober
	runStore = s.RunStore
	configStore = s.ConfigStore
}

var rootCmd = &cobra.Command{
	Use:   "fundfetch",
	Short: "Download and organise BRIMR NIH funding workbooks",
	Long: `fundfetch downloads the yearly NIH funding workbooks published on
brimr.org and files each one into a category directory (source data,
school rankings, department summaries, PI rankings, ...) under a
per-year folder.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
