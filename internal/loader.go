package internal

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LoadStats summarizes a single export read
type LoadStats struct {
	Rows    int
	Skipped int
}

// timestampLayouts are the accepted timestamp formats in the exports
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses an export timestamp in any accepted layout,
// interpreting layouts without a zone in local time.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range timestampLayouts[1:] {
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// LoadEvents reads the system event export (CSV columns: timestamp, event,
// host, user). Malformed rows are skipped and logged; they never abort the
// load.
func LoadEvents(path string) ([]RawEvent, LoadStats, error) {
	rows, stats, err := readCSV(path)
	if err != nil {
		return nil, stats, err
	}

	var events []RawEvent
	for i, row := range rows {
		if len(row) < 3 {
			stats.Skipped++
			LogWarn("Skipping event row %d in %s: expected at least 3 columns, got %d", i+1, path, len(row))
			continue
		}
		ts, err := ParseTimestamp(row[0])
		if err != nil {
			stats.Skipped++
			LogWarn("Skipping event row %d in %s: bad timestamp %q", i+1, path, row[0])
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(row[1]))
		switch kind {
		case EventLogon, EventLogoff, EventStartup, EventShutdown, EventSleep:
		default:
			stats.Skipped++
			LogWarn("Skipping event row %d in %s: unknown event kind %q", i+1, path, row[1])
			continue
		}
		ev := RawEvent{Timestamp: ts, Kind: kind, Host: strings.TrimSpace(row[2])}
		if len(row) > 3 {
			ev.User = strings.TrimSpace(row[3])
		}
		events = append(events, ev)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, stats, nil
}

// LoadCommits reads a single per-repository commit export (CSV columns:
// timestamp, repository, author, hash, message). Malformed rows are
// skipped and logged.
func LoadCommits(path string) ([]RawCommit, LoadStats, error) {
	rows, stats, err := readCSV(path)
	if err != nil {
		return nil, stats, err
	}

	var commits []RawCommit
	for i, row := range rows {
		if len(row) < 4 {
			stats.Skipped++
			LogWarn("Skipping commit row %d in %s: expected at least 4 columns, got %d", i+1, path, len(row))
			continue
		}
		ts, err := ParseTimestamp(row[0])
		if err != nil {
			stats.Skipped++
			LogWarn("Skipping commit row %d in %s: bad timestamp %q", i+1, path, row[0])
			continue
		}
		commit := RawCommit{
			Timestamp:  ts,
			Repository: strings.TrimSpace(row[1]),
			Author:     strings.TrimSpace(row[2]),
			Hash:       strings.TrimSpace(row[3]),
		}
		if len(row) > 4 {
			commit.Message = row[4]
		}
		if commit.Repository == "" {
			// Fall back to the export filename
			commit.Repository = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		commits = append(commits, commit)
	}
	return commits, stats, nil
}

// LoadCommitDir reads every *.csv commit export under dir and merges them
// into one time-sorted commit list.
func LoadCommitDir(dir string) ([]RawCommit, LoadStats, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, LoadStats{}, &LoadError{Path: dir, Op: "open", Err: err}
	}
	sort.Strings(paths)

	var all []RawCommit
	var total LoadStats
	for _, path := range paths {
		commits, stats, err := LoadCommits(path)
		if err != nil {
			return nil, total, err
		}
		all = append(all, commits...)
		total.Rows += stats.Rows
		total.Skipped += stats.Skipped
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all, total, nil
}

// readCSV reads all records from a CSV file, skipping a header row when the
// first column does not parse as a timestamp.
func readCSV(path string) ([][]string, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, &LoadError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	stats := LoadStats{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A structurally broken row is a skip, not an abort
			stats.Skipped++
			LogWarn("Skipping unreadable row in %s: %v", path, err)
			continue
		}
		stats.Rows++
		rows = append(rows, row)
	}

	// Drop a header row if present
	if len(rows) > 0 {
		if _, err := ParseTimestamp(rows[0][0]); err != nil {
			rows = rows[1:]
			stats.Rows--
		}
	}
	return rows, stats, nil
}
