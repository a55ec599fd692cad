package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupDays int

// cleanupCmd triggers a retention sweep
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old resolved alerts",
	Long: `Delete resolved alerts older than the retention window.

Only resolved alerts are touched; anything still active or merely
acknowledged is kept regardless of age.

Example:
  alertctl cleanup --days 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]int{"days": cleanupDays}

		var result struct {
			Removed int64 `json:"removed"`
		}
		if err := newClient().post(context.Background(), "/api/v1/cleanup", body, &result); err != nil {
			return err
		}

		if GetOutput() == "json" {
			return printJSON(result)
		}
		fmt.Printf("removed %d resolved alert(s)\n", result.Removed)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "retention window in days")

	rootCmd.AddCommand(cleanupCmd)
}
