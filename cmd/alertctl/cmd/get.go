package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// getCmd shows a single alert
var getCmd = &cobra.Command{
	Use:   "get <alert-id>",
	Short: "Show one alert in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var alert models.Alert
		if err := newClient().get(context.Background(), "/api/v1/alerts/"+args[0], &alert); err != nil {
			return err
		}

		if GetOutput() == "json" {
			return printJSON(&alert)
		}

		printAlert(&alert)
		return nil
	},
}

func printAlert(a *models.Alert) {
	fmt.Printf("ID:          %s\n", a.ID)
	fmt.Printf("Source:      %s\n", a.Source)
	fmt.Printf("Severity:    %s\n", a.Severity)
	fmt.Printf("Status:      %s\n", a.Status)
	fmt.Printf("Title:       %s\n", a.Title)
	if a.Message != "" {
		fmt.Printf("Message:     %s\n", a.Message)
	}
	fmt.Printf("Fingerprint: %s\n", a.Fingerprint)
	fmt.Printf("Seen:        %d time(s) between %s and %s\n",
		a.DuplicateCount,
		a.FirstSeen.Format(time.RFC3339),
		a.LastSeen.Format(time.RFC3339),
	)
	if len(a.Tags) > 0 {
		fmt.Printf("Tags:        %v\n", a.Tags)
	}
	for k, v := range a.Metadata {
		fmt.Printf("Meta:        %s=%v\n", k, v)
	}
	if a.AcknowledgedAt != nil {
		fmt.Printf("Acked:       %s by %s\n", a.AcknowledgedAt.Format(time.RFC3339), a.AcknowledgedBy)
	}
	if a.ResolvedAt != nil {
		fmt.Printf("Resolved:    %s\n", a.ResolvedAt.Format(time.RFC3339))
	}
}

func init() {
	rootCmd.AddCommand(getCmd)
}
