package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/worklog-sync/internal"
	"github.com/iksnae/worklog-sync/internal/calendar"
)

// loadInputs reads both raw exports and records load counts in the report
func loadInputs(cfg *internal.Config, report *internal.RunReport) ([]internal.RawEvent, []internal.RawCommit, error) {
	events, eventStats, err := internal.LoadEvents(cfg.EventsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load events: %w", err)
	}
	report.EventRows = eventStats.Rows
	report.EventsSkipped = eventStats.Skipped

	commits, commitStats, err := internal.LoadCommitDir(cfg.CommitsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load commits: %w", err)
	}
	report.CommitRows = commitStats.Rows
	report.CommitsSkipped = commitStats.Skipped

	internal.LogInfo("Loaded %d event(s) and %d commit(s)", len(events), len(commits))
	return events, commits, nil
}

// buildService constructs the capability-scoped calendar service from the
// configured credentials. Every calendar call in the program goes through
// the scoped wrapper.
func buildService(ctx context.Context, cfg *internal.Config) (*calendar.ScopedService, error) {
	google, err := calendar.NewGoogleService(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	return calendar.NewScopedService(google, cfg.CalendarID), nil
}
