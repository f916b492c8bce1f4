package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/worklog-sync/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "worklog-sync",
	Short: "Reconstruct work sessions and sync them to a calendar",
	Long: `worklog-sync reconstructs verifiable work sessions from system
logon/logoff exports and git commit exports, normalizes and deduplicates
them, resolves conflicts against an external calendar, and uploads the
surviving sessions as calendar events.

The pipeline is deterministic and idempotent: re-running it on unchanged
input against an unchanged calendar creates nothing new.

Quick Start:
  worklog-sync sessions              # Reconstruct and list work sessions
  worklog-sync plan                  # Show what a sync would upload (dry run)
  worklog-sync sync                  # Run the full pipeline and upload
  worklog-sync verify                # Reconcile the sync ledger with the calendar`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "worklog-sync.yaml", "Path to the config file")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
