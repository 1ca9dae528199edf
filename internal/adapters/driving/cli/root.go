// Package cli implements the command-line driving adapter.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driving"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

// version is injected at build time via SetVersion.
var version = "dev"

// Services wired by main before Execute.
var (
	synthesizer   driving.Synthesizer
	snapshotStore driven.SnapshotStore
	connectors    []driven.Connector
)

// initServices lazily wires the services once flags are parsed, so the
// --config flag takes effect before anything talks to the outside.
var initServices func(configPath string) error

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Synthesize a morning briefing from your sources",
	Long: `briefing gathers papers, mail, calendar events, tickets and
metrics from the configured sources concurrently, deduplicates them,
ranks research items by relevance, tracks day-over-day metric changes
and sorts actionable items into priority buckets.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if initServices != nil && synthesizer == nil {
			return initServices(configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

// OnInit registers the service initializer invoked after flag parsing.
func OnInit(fn func(configPath string) error) {
	initServices = fn
}

// SetSynthesizer wires the synthesis service.
func SetSynthesizer(s driving.Synthesizer) {
	synthesizer = s
}

// SetSnapshotStore wires the snapshot store used by history.
func SetSnapshotStore(s driven.SnapshotStore) {
	snapshotStore = s
}

// SetConnectors wires the connector list shown by sources.
func SetConnectors(c []driven.Connector) {
	connectors = c
}
