package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [date]",
	Short: "Inspect persisted metric snapshots",
	Long: `Without arguments, lists the dates that have a stored metric
snapshot. With a date, prints that snapshot's metrics and the change
against the most recent earlier snapshot.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 30, "maximum number of dates to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if snapshotStore == nil {
		return errors.New("snapshot store not configured")
	}

	ctx := context.Background()

	if len(args) == 0 {
		dates, err := snapshotStore.Dates(ctx)
		if err != nil {
			return fmt.Errorf("listing snapshots: %w", err)
		}
		if len(dates) == 0 {
			cmd.Println("No snapshots recorded yet.")
			return nil
		}
		if len(dates) > historyLimit {
			dates = dates[len(dates)-historyLimit:]
		}
		for _, date := range dates {
			cmd.Println(date)
		}
		return nil
	}

	date := args[0]
	if _, err := time.Parse(domain.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}

	snap, err := snapshotStore.Get(ctx, date)
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("No snapshot for %s.\n", date)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	previous, err := snapshotStore.LatestBefore(ctx, date)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("reading baseline: %w", err)
	}

	names := make([]string, 0, len(snap.Metrics))
	for name := range snap.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := snap.Metrics[name]
		if previous != nil {
			if prev, ok := previous.Metrics[name]; ok {
				cmd.Printf("%s: %g (%+g since %s)\n", name, value, value-prev, previous.Date)
				continue
			}
		}
		cmd.Printf("%s: %g\n", name, value)
	}
	return nil
}
