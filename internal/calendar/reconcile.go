package calendar

import (
	"context"
	"time"

	"github.com/iksnae/worklog-sync/internal"
)

// ledgerMargin widens the reconciliation query window around the ledgered
// session times
const ledgerMargin = 48 * time.Hour

// LedgerReconciliation summarizes a ledger-vs-calendar comparison
type LedgerReconciliation struct {
	Present int
	Missing []internal.LedgerEntry
}

// ReconcileLedger checks that every ledgered session still has its event on
// the calendar. The query window is derived from the ledgered session
// times: events sit at their session date, which can be years before the
// date they were uploaded when old exports are backfilled.
func ReconcileLedger(ctx context.Context, service Service, calendarID string, entries []internal.LedgerEntry) (*LedgerReconciliation, error) {
	result := &LedgerReconciliation{}
	if len(entries) == 0 {
		return result, nil
	}

	from := entries[0].SessionTime()
	to := from
	for _, entry := range entries[1:] {
		t := entry.SessionTime()
		if t.Before(from) {
			from = t
		}
		if t.After(to) {
			to = t
		}
	}

	events, err := service.ListEvents(ctx, calendarID, from.Add(-ledgerMargin), to.Add(ledgerMargin))
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool)
	for _, ev := range events {
		if ev.SessionID != "" {
			present[ev.SessionID] = true
		}
	}

	for _, entry := range entries {
		if present[entry.SessionID] {
			result.Present++
			continue
		}
		result.Missing = append(result.Missing, entry)
		internal.LogWarn("Ledgered session %s has no event on the calendar", entry.SessionID)
	}
	return result, nil
}
