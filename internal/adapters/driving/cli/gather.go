package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

var gatherJSON bool

var gatherCmd = &cobra.Command{
	Use:   "gather [source...]",
	Short: "Fetch sources without running the pipeline",
	Long: `Runs only the concurrent gather stage and reports each
source's status and payload size. With source names given, only those
sources are fetched. Useful for debugging connector configuration.`,
	RunE: runGather,
}

func init() {
	gatherCmd.Flags().BoolVar(&gatherJSON, "json", false, "output raw results as JSON")
	rootCmd.AddCommand(gatherCmd)
}

func runGather(cmd *cobra.Command, args []string) error {
	if synthesizer == nil {
		return errors.New("synthesis service not configured")
	}

	results, err := synthesizer.Gather(context.Background(), args)
	if err != nil {
		return fmt.Errorf("gather failed: %w", err)
	}

	if gatherJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		result := results[id]
		cmd.Printf("%-12s %s  %d items, %d metrics%s\n",
			id, statusLabel(result.Status), len(result.Items), len(result.Metrics),
			detailSuffix(result.Detail))
	}
	return nil
}

func statusLabel(s domain.SourceStatus) string {
	switch s {
	case domain.StatusOK:
		return color.GreenString("%-8s", s)
	case domain.StatusSkipped:
		return color.New(color.Faint).Sprintf("%-8s", s)
	default:
		return color.RedString("%-8s", s)
	}
}

func detailSuffix(detail string) string {
	if detail == "" {
		return ""
	}
	return " (" + detail + ")"
}
