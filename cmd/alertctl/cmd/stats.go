package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// statsCmd shows aggregation statistics
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregation statistics",
	Long: `Show counters for the current server run: totals by severity,
status, and source, plus how much the deduplicator merged away.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var snap models.StatsSnapshot
		if err := newClient().get(context.Background(), "/api/v1/stats", &snap); err != nil {
			return err
		}

		if GetOutput() == "json" {
			return printJSON(snap)
		}

		fmt.Printf("Total alerts:      %d\n", snap.TotalAlerts)
		fmt.Printf("Duplicates merged: %d\n", snap.DuplicatesMerged)
		fmt.Printf("Dedup rate:        %.2f\n", snap.DeduplicationRate)

		printBuckets("By severity", snap.BySeverity)
		printBuckets("By status", snap.ByStatus)
		printBuckets("By source", snap.BySource)

		return nil
	},
}

func printBuckets(title string, buckets map[string]int64) {
	if len(buckets) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for name, count := range buckets {
		fmt.Printf("  %-15s %d\n", name, count)
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
