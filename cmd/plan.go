package cmd

import (
	"fmt"

	"github.com/iksnae/worklog-sync/internal"
	"github.com/iksnae/worklog-sync/internal/calendar"
	"github.com/spf13/cobra"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the upload plan without uploading (dry run)",
	Long: `Run the full pipeline including conflict resolution against the
external calendar and print the resulting upload plan. Nothing is created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		report := internal.NewRunReport()

		events, commits, err := loadInputs(cfg, report)
		if err != nil {
			return err
		}
		sessions := internal.NewPipeline().Run(events, commits, report)

		service, err := buildService(ctx, cfg)
		if err != nil {
			return err
		}

		resolver := calendar.NewResolver(service, cfg.CalendarID)
		resolution, err := resolver.Resolve(ctx, sessions)
		if err != nil {
			return fmt.Errorf("conflict resolution failed: %w", err)
		}

		ledger, err := internal.OpenLedger(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		syncer := calendar.NewSyncer(service, cfg.CalendarID, ledger, cfg.RatePerSecond, cfg.UploadWorkers, cfg.BatchSize, cfg.MaxAttempts)
		plan, err := syncer.BuildPlan(ctx, resolution.Upload)
		if err != nil {
			return fmt.Errorf("failed to build upload plan: %w", err)
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Upload Plan: %d new, %d skipped", len(plan.New), len(plan.Skip)+len(resolution.Skipped))))
		for _, planned := range plan.New {
			s := planned.Session
			fmt.Printf("  create  %s  %s %s–%s  %.2fh (%s)\n",
				s.SessionID, s.Date(), s.StartTime.Format("15:04"), s.EndTime.Format("15:04"), s.WorkHours, s.Category)
		}
		for _, skip := range resolution.Skipped {
			fmt.Printf("  skip    %s  %s\n", skip.SessionID, skip.Reason)
		}
		for _, skip := range plan.Skip {
			fmt.Printf("  skip    %s  %s\n", skip.SessionID, skip.Reason)
		}
		for _, conflict := range resolution.Conflicts {
			if conflict.Action == "flagged" {
				fmt.Printf("  conflict %s overlaps %s by %s (manual resolution required)\n",
					conflict.SessionID, conflict.EventID, conflict.Overlap)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
