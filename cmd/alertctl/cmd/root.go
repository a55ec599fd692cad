// Package cmd contains the CLI commands for alertctl.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Used for flags
	serverURL string
	output    string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alertctl",
	Short: "BlazeAlert - Alert aggregation control tool",
	Long: `alertctl talks to a running blazealert-server over its REST API.

It submits alerts, inspects and filters the alert store, drives the
acknowledge/resolve lifecycle, and reports aggregation statistics.

Examples:
  # Submit an alert
  alertctl submit --source db --severity error --title "connection lost"

  # List unresolved critical alerts
  alertctl list --severity critical --status new

  # Acknowledge an alert
  alertctl ack 4f7b2c91 --by ops

  # Show aggregation statistics
  alertctl stats`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "blazealert-server base URL")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}
