package internal

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger persists the session id to external event id mapping across runs.
// It is an extra idempotency guard on top of the live calendar snapshot:
// a session recorded here is never uploaded again, even if the calendar
// query misses it.
type Ledger struct {
	db   *sql.DB
	path string
}

// LedgerEntry is one recorded upload. SessionStart is the session's own
// start time, not the upload time; the two can be years apart when old
// exports are backfilled.
type LedgerEntry struct {
	SessionID    string
	EventID      string
	CalendarID   string
	SessionStart time.Time
	UploadedAt   time.Time
}

// SessionTime returns the session start, falling back to the upload time
// for rows recorded before session starts were tracked
func (e LedgerEntry) SessionTime() time.Time {
	if !e.SessionStart.IsZero() {
		return e.SessionStart
	}
	return e.UploadedAt
}

// OpenLedger opens (creating if needed) the sqlite ledger at path
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &LedgerError{Path: path, Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &LedgerError{Path: path, Op: "open", Err: err}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sync_ledger (
		session_id    TEXT PRIMARY KEY,
		event_id      TEXT NOT NULL,
		calendar_id   TEXT NOT NULL,
		session_start TEXT NOT NULL DEFAULT '',
		uploaded_at   TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &LedgerError{Path: path, Op: "init", Err: err}
	}

	return &Ledger{db: db, path: path}, nil
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores (or replaces) the mapping for a session
func (l *Ledger) Record(entry LedgerEntry) error {
	sessionStart := ""
	if !entry.SessionStart.IsZero() {
		sessionStart = entry.SessionStart.UTC().Format(time.RFC3339)
	}
	_, err := l.db.Exec(
		"INSERT OR REPLACE INTO sync_ledger (session_id, event_id, calendar_id, session_start, uploaded_at) VALUES (?, ?, ?, ?, ?)",
		entry.SessionID, entry.EventID, entry.CalendarID, sessionStart, entry.UploadedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &LedgerError{Path: l.path, Op: "write", Err: err}
	}
	return nil
}

// Lookup returns the event id recorded for a session, or "" when absent
func (l *Ledger) Lookup(sessionID string) (string, error) {
	var eventID string
	err := l.db.QueryRow(
		"SELECT event_id FROM sync_ledger WHERE session_id = ?", sessionID,
	).Scan(&eventID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", &LedgerError{Path: l.path, Op: "query", Err: err}
	}
	return eventID, nil
}

// Entries returns every recorded mapping, ordered by session id
func (l *Ledger) Entries() ([]LedgerEntry, error) {
	rows, err := l.db.Query(
		"SELECT session_id, event_id, calendar_id, session_start, uploaded_at FROM sync_ledger ORDER BY session_id",
	)
	if err != nil {
		return nil, &LedgerError{Path: l.path, Op: "query", Err: err}
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var entry LedgerEntry
		var sessionStart, uploadedAt string
		if err := rows.Scan(&entry.SessionID, &entry.EventID, &entry.CalendarID, &sessionStart, &uploadedAt); err != nil {
			return nil, &LedgerError{Path: l.path, Op: "query", Err: err}
		}
		if t, err := time.Parse(time.RFC3339, sessionStart); err == nil {
			entry.SessionStart = t
		}
		if t, err := time.Parse(time.RFC3339, uploadedAt); err == nil {
			entry.UploadedAt = t
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &LedgerError{Path: l.path, Op: "query", Err: err}
	}
	return entries, nil
}

// SessionIDs returns the set of session ids already recorded
func (l *Ledger) SessionIDs() (map[string]string, error) {
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(entries))
	for _, entry := range entries {
		ids[entry.SessionID] = entry.EventID
	}
	return ids, nil
}
