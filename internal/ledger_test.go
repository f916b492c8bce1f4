package internal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestLedgerRecordAndLookup(t *testing.T) {
	ledger := openTestLedger(t)

	entry := LedgerEntry{
		SessionID:    "ws-20240311-0900-real",
		EventID:      "evt-1",
		CalendarID:   "work@example.com",
		SessionStart: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		UploadedAt:   time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC),
	}
	if err := ledger.Record(entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := ledger.Lookup("ws-20240311-0900-real")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != "evt-1" {
		t.Errorf("Lookup() = %q, want evt-1", got)
	}

	entries, err := ledger.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 || !entries[0].SessionStart.Equal(entry.SessionStart) {
		t.Errorf("Entries() = %+v, session start not preserved", entries)
	}

	missing, err := ledger.Lookup("ws-absent")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if missing != "" {
		t.Errorf("Lookup() on absent id = %q, want empty", missing)
	}
}

func TestLedgerRecordReplaces(t *testing.T) {
	ledger := openTestLedger(t)

	base := LedgerEntry{SessionID: "ws-1", EventID: "evt-old", CalendarID: "cal", UploadedAt: time.Now()}
	if err := ledger.Record(base); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	base.EventID = "evt-new"
	if err := ledger.Record(base); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, _ := ledger.Lookup("ws-1")
	if got != "evt-new" {
		t.Errorf("Lookup() = %q, want evt-new after replace", got)
	}

	entries, err := ledger.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Entries() = %d rows, want 1", len(entries))
	}
}

func TestLedgerSessionIDs(t *testing.T) {
	ledger := openTestLedger(t)

	for _, id := range []string{"ws-a", "ws-b"} {
		err := ledger.Record(LedgerEntry{SessionID: id, EventID: "evt-" + id, CalendarID: "cal", UploadedAt: time.Now()})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	ids, err := ledger.SessionIDs()
	if err != nil {
		t.Fatalf("SessionIDs() error = %v", err)
	}
	if len(ids) != 2 || ids["ws-a"] != "evt-ws-a" {
		t.Errorf("SessionIDs() = %v", ids)
	}
}

func TestLedgerEntrySessionTime(t *testing.T) {
	start := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	uploaded := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	with := LedgerEntry{SessionStart: start, UploadedAt: uploaded}
	if !with.SessionTime().Equal(start) {
		t.Errorf("SessionTime() = %v, want the session start", with.SessionTime())
	}

	without := LedgerEntry{UploadedAt: uploaded}
	if !without.SessionTime().Equal(uploaded) {
		t.Errorf("SessionTime() = %v, want the upload-time fallback", without.SessionTime())
	}
}
