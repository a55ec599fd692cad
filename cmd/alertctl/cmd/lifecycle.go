package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

var ackBy string

// ackCmd acknowledges an alert
var ackCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an alert",
	Long: `Mark an alert as acknowledged so the team knows someone is on it.

Example:
  alertctl ack 4f7b2c91-33ab-4c61-9f00-1f2d3e4a5b6c --by ops`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"by": ackBy}

		var alert models.Alert
		if err := newClient().post(context.Background(), "/api/v1/alerts/"+args[0]+"/acknowledge", body, &alert); err != nil {
			return err
		}

		if GetOutput() == "json" {
			return printJSON(&alert)
		}
		fmt.Printf("alert %s acknowledged\n", args[0])
		return nil
	},
}

// resolveCmd resolves an alert
var resolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an alert",
	Long: `Mark an alert as resolved. Resolved alerts leave the active set,
so a recurrence of the same condition opens a fresh alert.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var alert models.Alert
		if err := newClient().post(context.Background(), "/api/v1/alerts/"+args[0]+"/resolve", nil, &alert); err != nil {
			return err
		}

		if GetOutput() == "json" {
			return printJSON(&alert)
		}
		fmt.Printf("alert %s resolved\n", args[0])
		return nil
	},
}

func init() {
	ackCmd.Flags().StringVar(&ackBy, "by", "", "who is acknowledging")

	rootCmd.AddCommand(ackCmd)
	rootCmd.AddCommand(resolveCmd)
}
