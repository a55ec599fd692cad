package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/blazealert/internal/collector"
	"github.com/good-yellow-bee/blazealert/internal/models"
)

var (
	submitSource    string
	submitSeverity  string
	submitTitle     string
	submitMessage   string
	submitTimestamp string
	submitTags      []string
	submitMeta      []string
)

// submitCmd submits a new alert
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an alert",
	Long: `Submit an alert to the server.

The server deduplicates on arrival: a repeat of an active alert is
merged into it instead of creating a new record, and the surviving
alert is printed with its updated duplicate count.

Examples:
  # Minimal alert
  alertctl submit --source db --severity error --title "connection lost"

  # With message, tags, and metadata
  alertctl submit --source web --severity critical --title "5xx spike" \
    --message "error rate at 12%" --tag frontend --meta region=eu-west-1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := collector.Record{
			Source:    submitSource,
			Severity:  submitSeverity,
			Title:     submitTitle,
			Message:   submitMessage,
			Timestamp: submitTimestamp,
			Tags:      submitTags,
		}
		if len(submitMeta) > 0 {
			rec.Metadata = make(map[string]any, len(submitMeta))
			for _, kv := range submitMeta {
				key, value, found := strings.Cut(kv, "=")
				if !found || key == "" {
					return fmt.Errorf("invalid --meta %q, want key=value", kv)
				}
				rec.Metadata[key] = value
			}
		}

		var alert models.Alert
		if err := newClient().post(context.Background(), "/api/v1/alerts", rec, &alert); err != nil {
			return err
		}

		if GetOutput() == "json" {
			return printJSON(&alert)
		}

		fmt.Printf("alert %s [%s] %s\n", alert.ID, alert.Severity, alert.Title)
		if alert.DuplicateCount > 1 {
			fmt.Printf("merged into existing alert (seen %d times)\n", alert.DuplicateCount)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitSource, "source", "", "alert source (required)")
	submitCmd.Flags().StringVar(&submitSeverity, "severity", "info", "severity (debug, info, warning, error, critical)")
	submitCmd.Flags().StringVar(&submitTitle, "title", "", "alert title (required)")
	submitCmd.Flags().StringVar(&submitMessage, "message", "", "alert message")
	submitCmd.Flags().StringVar(&submitTimestamp, "timestamp", "", "event time (RFC 3339, defaults to now)")
	submitCmd.Flags().StringArrayVar(&submitTags, "tag", nil, "tag (repeatable)")
	submitCmd.Flags().StringArrayVar(&submitMeta, "meta", nil, "metadata key=value (repeatable)")

	submitCmd.MarkFlagRequired("source")
	submitCmd.MarkFlagRequired("title")

	rootCmd.AddCommand(submitCmd)
}
