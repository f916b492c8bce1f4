package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadEvents(t *testing.T) {
	path := writeFile(t, t.TempDir(), "events.csv",
		"timestamp,event,host,user\n"+
			"2024-03-11T09:00:00Z,logon,desk,jo\n"+
			"2024-03-11T12:30:00Z,logoff,desk,jo\n")

	events, stats, err := LoadEvents(path)
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("LoadEvents() = %d events, want 2", len(events))
	}
	if stats.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", stats.Skipped)
	}
	if events[0].Kind != EventLogon || events[0].Host != "desk" || events[0].User != "jo" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Timestamp.Before(events[0].Timestamp) {
		t.Error("events not sorted by timestamp")
	}
}

func TestLoadEventsSkipsMalformedRows(t *testing.T) {
	path := writeFile(t, t.TempDir(), "events.csv",
		"timestamp,event,host,user\n"+
			"not-a-timestamp,logon,desk,jo\n"+
			"2024-03-11T09:00:00Z,teleport,desk,jo\n"+
			"2024-03-11T09:00:00Z,logon\n"+
			"2024-03-11T10:00:00Z,logon,desk,jo\n")

	events, stats, err := LoadEvents(path)
	if err != nil {
		t.Fatalf("LoadEvents() error = %v, malformed rows must not abort", err)
	}
	if len(events) != 1 {
		t.Fatalf("LoadEvents() = %d events, want 1", len(events))
	}
	if stats.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", stats.Skipped)
	}
}

func TestLoadEventsMissingFile(t *testing.T) {
	_, _, err := LoadEvents(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("LoadEvents() on a missing file returned nil error")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("error type = %T, want *LoadError", err)
	}
}

func TestLoadCommits(t *testing.T) {
	path := writeFile(t, t.TempDir(), "api.csv",
		"timestamp,repository,author,hash,message\n"+
			"2024-03-11T10:15:00Z,api,jo@example.com,abc123,\"feat: add, with comma\"\n"+
			"2024-03-11T11:00:00Z,,jo@example.com,def456,fix thing\n")

	commits, stats, err := LoadCommits(path)
	if err != nil {
		t.Fatalf("LoadCommits() error = %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("LoadCommits() = %d commits, want 2", len(commits))
	}
	if stats.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", stats.Skipped)
	}
	if commits[0].Message != "feat: add, with comma" {
		t.Errorf("message = %q, quoted comma mishandled", commits[0].Message)
	}
	if commits[1].Repository != "api" {
		t.Errorf("empty repository column should fall back to filename, got %q", commits[1].Repository)
	}
}

func TestLoadCommitDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "api.csv",
		"timestamp,repository,author,hash,message\n"+
			"2024-03-11T14:00:00Z,api,jo,aaa,later\n")
	writeFile(t, dir, "web.csv",
		"timestamp,repository,author,hash,message\n"+
			"2024-03-11T10:00:00Z,web,jo,bbb,earlier\n")

	commits, _, err := LoadCommitDir(dir)
	if err != nil {
		t.Fatalf("LoadCommitDir() error = %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("LoadCommitDir() = %d commits, want 2", len(commits))
	}
	if commits[0].Repository != "web" {
		t.Errorf("commits not merged in time order: first is %s", commits[0].Repository)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	tests := []string{
		"2024-03-11T09:00:00Z",
		"2024-03-11 09:00:00",
		"2024-03-11T09:00:00",
	}
	for _, raw := range tests {
		if _, err := ParseTimestamp(raw); err != nil {
			t.Errorf("ParseTimestamp(%q) error = %v", raw, err)
		}
	}
	if _, err := ParseTimestamp("11/03/2024"); err == nil {
		t.Error("ParseTimestamp() accepted an unsupported layout")
	}
}
