package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

var (
	listSeverity string
	listStatus   string
	listSource   string
	listLimit    int
)

// listResult mirrors the server's list envelope.
type listResult struct {
	Items []*models.Alert `json:"items"`
	Count int             `json:"count"`
}

// listCmd lists alerts
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts",
	Long: `List alerts, most recent first.

Filters combine with AND semantics.

Examples:
  # All alerts (up to the server's default limit)
  alertctl list

  # Unacknowledged critical alerts from one source
  alertctl list --severity critical --status new --source db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if listSeverity != "" {
			q.Set("severity", listSeverity)
		}
		if listStatus != "" {
			q.Set("status", listStatus)
		}
		if listSource != "" {
			q.Set("source", listSource)
		}
		if listLimit > 0 {
			q.Set("limit", strconv.Itoa(listLimit))
		}

		path := "/api/v1/alerts"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		var result listResult
		if err := newClient().get(context.Background(), path, &result); err != nil {
			return err
		}

		if GetOutput() == "json" {
			return printJSON(result)
		}

		if result.Count == 0 {
			fmt.Println("No alerts found.")
			return nil
		}

		fmt.Printf("\n%-36s  %-8s  %-12s  %-15s  %5s  %s\n",
			"ID", "SEVERITY", "STATUS", "SOURCE", "COUNT", "TITLE")
		fmt.Println(strings.Repeat("-", 110))

		for _, a := range result.Items {
			fmt.Printf("%-36s  %-8s  %-12s  %-15s  %5d  %s\n",
				a.ID,
				a.Severity,
				a.Status,
				a.Source,
				a.DuplicateCount,
				a.Title,
			)
		}
		fmt.Printf("\nTotal: %d alert(s)\n", result.Count)

		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listSeverity, "severity", "", "filter by severity")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	listCmd.Flags().StringVar(&listSource, "source", "", "filter by source")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum results (server default: 100)")

	rootCmd.AddCommand(listCmd)
}
