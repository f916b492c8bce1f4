package cmd

import (
	"fmt"

	"github.com/iksnae/worklog-sync/internal"
	"github.com/iksnae/worklog-sync/internal/calendar"
	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the full pipeline and upload sessions to the calendar",
	Long: `Reconstruct sessions, assign commits, polish, deduplicate, resolve
conflicts against the external calendar, upload the surviving sessions in
rate-limited batches, verify the result, and write the run report.

The run always completes and always emits a report; every skip, flag, and
failure appears there with a reason.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		report := internal.NewRunReport()
		report.TargetHours = cfg.TargetHours

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
		report.ConflictsResolved = resolution.Resolved
		report.ConflictsFlagged = resolution.Flagged
		report.Conflicts = resolution.Conflicts
		report.Skipped = append(report.Skipped, resolution.Skipped...)

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
		report.Skipped = append(report.Skipped, plan.Skip...)

		outcome := syncer.Upload(ctx, plan)
		report.Uploaded = len(outcome.Uploaded)
		report.Failed = outcome.Failed

		verification, err := syncer.Verify(ctx, outcome.Uploaded)
		if err != nil {
			internal.LogWarn("Post-upload verification failed: %v", err)
			for _, planned := range outcome.Uploaded {
				report.Unverified = append(report.Unverified, planned.Session.SessionID)
			}
		} else {
			report.VerifiedCount = verification.Verified
			report.Unverified = verification.Unverified
			report.VerifiedHours = verification.VerifiedHours
		}

		report.Finish()
		path, err := report.WriteFile(cfg.ReportDir)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Sync complete"))
		fmt.Println(summaryStyle.Render(report.Summary()))
		if cfg.TargetHours > 0 {
			fmt.Println(summaryStyle.Render(fmt.Sprintf("verified %.2fh of %.2fh target", report.VerifiedHours, cfg.TargetHours)))
		}
		fmt.Printf("Report written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
