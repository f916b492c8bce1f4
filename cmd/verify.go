package cmd

import (
	"fmt"

	"github.com/iksnae/worklog-sync/internal"
	"github.com/iksnae/worklog-sync/internal/calendar"
	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Reconcile the sync ledger against the live calendar",
	Long: `Compare every session recorded in the sync ledger with the events
currently on the calendar and report entries whose event has disappeared
(deleted or moved by a human).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		ledger, err := internal.OpenLedger(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		entries, err := ledger.Entries()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Ledger is empty, nothing to verify")
			return nil
		}

		service, err := buildService(ctx, cfg)
		if err != nil {
			return err
		}

		result, err := calendar.ReconcileLedger(ctx, service, cfg.CalendarID, entries)
		if err != nil {
			return fmt.Errorf("failed to list calendar events: %w", err)
		}

		for _, entry := range result.Missing {
			fmt.Printf("  missing  %s (event %s, uploaded %s)\n",
				entry.SessionID, entry.EventID, entry.UploadedAt.Format("2006-01-02"))
		}

		fmt.Println(summaryStyle.Render(fmt.Sprintf(
			"%d ledger entr(ies), %d present on calendar, %d missing",
			len(entries), result.Present, len(result.Missing),
		)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
