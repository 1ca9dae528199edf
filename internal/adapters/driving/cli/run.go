package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

var (
	runJSON   bool
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run [date]",
	Short: "Run the full briefing synthesis",
	Long: `Runs the synthesis pipeline for the given ISO date (default:
today): gathers all sources, deduplicates, classifies research items,
computes metric deltas and sorts actionable items into priority
buckets. Source failures degrade the briefing instead of aborting it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the briefing as JSON")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "also save the briefing JSON to a file")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if synthesizer == nil {
		return errors.New("synthesis service not configured")
	}

	date := time.Now().Format(domain.DateFormat)
	if len(args) > 0 {
		if _, err := time.Parse(domain.DateFormat, args[0]); err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", args[0])
		}
		date = args[0]
	}

	briefing, runErr := synthesizer.Run(context.Background(), date)
	if briefing == nil {
		return fmt.Errorf("synthesis failed: %w", runErr)
	}

	if runOutput != "" {
		if err := saveBriefing(briefing, runOutput); err != nil {
			return err
		}
		cmd.Printf("Saved briefing to %s\n", runOutput)
	}

	if runJSON {
		data, err := json.MarshalIndent(briefing, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding briefing: %w", err)
		}
		cmd.Println(string(data))
	} else {
		renderBriefing(cmd, briefing)
	}

	if runErr != nil {
		return fmt.Errorf("synthesis incomplete: %w", runErr)
	}
	return nil
}

func saveBriefing(b *domain.Briefing, path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding briefing: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing briefing: %w", err)
	}
	return nil
}

var bucketHeadings = map[domain.Bucket]*color.Color{
	domain.BucketUrgent:   color.New(color.FgRed, color.Bold),
	domain.BucketToday:    color.New(color.FgYellow, color.Bold),
	domain.BucketThisWeek: color.New(color.FgCyan, color.Bold),
}

var bucketTitles = map[domain.Bucket]string{
	domain.BucketUrgent:   "URGENT",
	domain.BucketToday:    "TODAY",
	domain.BucketThisWeek: "THIS WEEK",
}

func renderBriefing(cmd *cobra.Command, b *domain.Briefing) {
	heading := color.New(color.Bold)
	dim := color.New(color.Faint)

	cmd.Println(heading.Sprintf("Briefing for %s", b.Date))
	if b.Degraded {
		cmd.Println(color.YellowString("(degraded: some sources or services were unavailable)"))
	}
	if b.FailedStage != "" {
		cmd.Println(color.RedString("(partial: pipeline stopped after %s)", b.FailedStage))
	}
	for _, w := range b.Warnings {
		cmd.Println(color.YellowString("warning: %s", w))
	}
	cmd.Println()

	// Priority buckets.
	for _, bucket := range domain.Buckets {
		items := b.Buckets[bucket]
		if len(items) == 0 {
			continue
		}
		cmd.Println(bucketHeadings[bucket].Sprint(bucketTitles[bucket]))
		for _, item := range items {
			cmd.Printf("  [%d] %s %s\n", item.Total, item.Item.Representative.Title,
				dim.Sprintf("(%s)", factorNames(item.Factors)))
		}
		cmd.Println()
	}

	// Research tiers.
	if len(b.Tiers) > 0 {
		cmd.Println(heading.Sprint("Research"))
		for _, tier := range []domain.Tier{domain.Tier1, domain.Tier2, domain.Tier3} {
			for _, item := range b.Tiers[tier] {
				cmd.Printf("  [%s] %s %s\n", tier, item.Item.Representative.Title,
					dim.Sprintf("(%s)", strings.Join(item.Rationale, ", ")))
			}
		}
		cmd.Println()
	}

	// Metric deltas.
	if len(b.Deltas) > 0 {
		cmd.Println(heading.Sprint("Changes"))
		for _, d := range b.Deltas {
			cmd.Printf("  %s: %g → %g (%+g) since %s\n",
				d.Metric, d.Previous, d.Current, d.Delta, d.ComparedTo)
		}
		cmd.Println()
	}

	// Per-source sections.
	for _, section := range b.Sections {
		if section.Unavailable {
			cmd.Printf("%s %s\n", heading.Sprint(section.SourceID),
				color.RedString("(unavailable: %s)", section.Status))
			continue
		}
		if len(section.Items) == 0 {
			continue
		}
		cmd.Println(heading.Sprint(section.SourceID))
		for _, item := range section.Items {
			line := item.Representative.Title
			if !item.Representative.Timestamp.IsZero() {
				line += dim.Sprintf(" (%s)", item.Representative.Timestamp.Format("Mon 15:04"))
			}
			cmd.Printf("  %s\n", line)
		}
		cmd.Println()
	}
}

func factorNames(factors []domain.Factor) string {
	names := make([]string, 0, len(factors))
	for _, f := range factors {
		names = append(names, fmt.Sprintf("%s+%d", f.Name, f.Points))
	}
	return strings.Join(names, " ")
}
