package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/iksnae/worklog-sync/internal"
	"github.com/iksnae/worklog-sync/internal/calendar"
	"github.com/iksnae/worklog-sync/testutil"
)

func ts(day, hour, min int) time.Time {
	return time.Date(2024, 3, day, hour, min, 0, 0, time.UTC)
}

func TestResolveShiftsShortOverlap(t *testing.T) {
	fake := testutil.NewFakeCalendar()
	fake.Seed(calendar.ExternalEvent{
		ID:      "dentist",
		Start:   ts(11, 8, 30),
		End:     ts(11, 9, 45),
		Summary: "Dentist",
	})

	session := internal.MakeTestSession(ts(11, 9, 0), 4*time.Hour)
	resolver := calendar.NewResolver(fake, "cal")

	res, err := resolver.Resolve(context.Background(), []*internal.WorkSession{session})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(res.Upload) != 1 {
		t.Fatalf("Upload = %d sessions, want 1", len(res.Upload))
	}
	if res.Resolved != 1 || res.Flagged != 0 {
		t.Errorf("Resolved = %d, Flagged = %d, want 1/0", res.Resolved, res.Flagged)
	}
	if !session.StartTime.Equal(ts(11, 9, 45)) {
		t.Errorf("shifted start = %s, want 09:45", session.StartTime.Format("15:04"))
	}
	if !session.EndTime.Equal(ts(11, 13, 0)) {
		t.Errorf("end moved to %s, shift must not touch the end", session.EndTime.Format("15:04"))
	}
	if session.WorkHours != 3.25 {
		t.Errorf("WorkHours = %v, want capped to 3.25", session.WorkHours)
	}
	if err := session.Validate(); err != nil {
		t.Errorf("shifted session invalid: %v", err)
	}

	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %d, want 1", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if c.Action != "shifted" || c.EventID != "dentist" || c.Overlap != 45*time.Minute {
		t.Errorf("conflict record = %+v", c)
	}
}

func TestResolveFlagsLongOverlap(t *testing.T) {
	fake := testutil.NewFakeCalendar()
	fake.Seed(calendar.ExternalEvent{
		ID:      "offsite",
		Start:   ts(11, 9, 0),
		End:     ts(11, 12, 0),
		Summary: "Team offsite",
	})

	session := internal.MakeTestSession(ts(11, 9, 0), 4*time.Hour)
	resolver := calendar.NewResolver(fake, "cal")

	res, err := resolver.Resolve(context.Background(), []*internal.WorkSession{session})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(res.Upload) != 0 {
		t.Fatalf("flagged session must be excluded from upload, got %d", len(res.Upload))
	}
	if res.Flagged != 1 || res.Resolved != 0 {
		t.Errorf("Flagged = %d, Resolved = %d, want 1/0", res.Flagged, res.Resolved)
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %d, want 1", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if c.Action != "flagged" || c.Overlap != 3*time.Hour {
		t.Errorf("conflict record = %+v", c)
	}
	// Flagging must not mutate the session
	if !session.StartTime.Equal(ts(11, 9, 0)) {
		t.Error("flagged session was shifted")
	}
}

func TestResolveSkipsExistingEvents(t *testing.T) {
	byID := internal.MakeTestSession(ts(11, 9, 0), 3*time.Hour)
	byRange := internal.MakeTestSession(ts(12, 9, 0), 3*time.Hour)
	fresh := internal.MakeTestSession(ts(13, 9, 0), 3*time.Hour)

	fake := testutil.NewFakeCalendar()
	// Same session id, as from an earlier run
	fake.Seed(calendar.ExternalEvent{
		Start: ts(11, 9, 0), End: ts(11, 12, 0), SessionID: byID.SessionID,
	})
	// Human event occupying the exact time range, no session id
	fake.Seed(calendar.ExternalEvent{
		Start: ts(12, 9, 0), End: ts(12, 12, 0), Summary: "Workshop",
	})

	resolver := calendar.NewResolver(fake, "cal")
	res, err := resolver.Resolve(context.Background(), []*internal.WorkSession{byID, byRange, fresh})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(res.Upload) != 1 || res.Upload[0] != fresh {
		t.Fatalf("Upload = %d sessions, want only the fresh one", len(res.Upload))
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("Skipped = %d, want 2", len(res.Skipped))
	}
	reasons := map[string]string{}
	for _, sk := range res.Skipped {
		reasons[sk.SessionID] = sk.Reason
	}
	if reasons[byID.SessionID] != "already on calendar (session id)" {
		t.Errorf("id skip reason = %q", reasons[byID.SessionID])
	}
	if reasons[byRange.SessionID] != "already on calendar (exact time range)" {
		t.Errorf("range skip reason = %q", reasons[byRange.SessionID])
	}
}

func TestResolveDropsUnshiftableSession(t *testing.T) {
	// The shifted remainder falls below the minimum duration
	fake := testutil.NewFakeCalendar()
	fake.Seed(calendar.ExternalEvent{
		ID: "standup", Start: ts(11, 9, 0), End: ts(11, 10, 45), Summary: "Planning",
	})

	session := internal.MakeTestSession(ts(11, 9, 30), 90*time.Minute)
	resolver := calendar.NewResolver(fake, "cal")

	res, err := resolver.Resolve(context.Background(), []*internal.WorkSession{session})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(res.Upload) != 0 {
		t.Fatal("session below minimum duration after shift must not upload")
	}
	found := false
	for _, sk := range res.Skipped {
		if sk.Reason == "below minimum duration after conflict shift" {
			found = true
		}
	}
	if !found {
		t.Errorf("skip reason missing, got %+v", res.Skipped)
	}
}

func TestResolveIdempotentAcrossRuns(t *testing.T) {
	fake := testutil.NewFakeCalendar()
	sessions := []*internal.WorkSession{
		internal.MakeTestSession(ts(11, 9, 0), 3*time.Hour),
		internal.MakeTestSession(ts(12, 14, 0), 2*time.Hour),
	}
	resolver := calendar.NewResolver(fake, "cal")
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, sessions)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(first.Upload) != 2 {
		t.Fatalf("first run Upload = %d, want 2", len(first.Upload))
	}

	syncer := calendar.NewSyncer(fake, "cal", nil, 1000, 2, 50, 3)
	plan, err := syncer.BuildPlan(ctx, first.Upload)
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	syncer.Upload(ctx, plan)

	second, err := resolver.Resolve(ctx, sessions)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(second.Upload) != 0 {
		t.Errorf("second run Upload = %d, want 0 (everything already on calendar)", len(second.Upload))
	}
	if len(second.Skipped) != 2 {
		t.Errorf("second run Skipped = %d, want 2", len(second.Skipped))
	}
	if fake.EventCount() != 2 {
		t.Errorf("EventCount = %d, want 2 (no duplicates created)", fake.EventCount())
	}
}
