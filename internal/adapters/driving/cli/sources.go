package cli

import (
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and their availability",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	names := make([]string, 0, len(connectors))
	available := make(map[string]bool, len(connectors))
	for _, c := range connectors {
		names = append(names, c.Name())
		available[c.Name()] = c.Available()
	}
	sort.Strings(names)

	for _, name := range names {
		if available[name] {
			cmd.Printf("%-12s %s\n", name, color.GreenString("configured"))
		} else {
			cmd.Printf("%-12s %s\n", name, color.New(color.Faint).Sprint("not configured"))
		}
	}
	return nil
}
