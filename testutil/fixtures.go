package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteEventsCSV writes a system event export fixture
func WriteEventsCSV(t *testing.T, dir string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, "events.csv")
	content := "timestamp,event,host,user\n"
	for _, row := range rows {
		content += row + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write events fixture: %v", err)
	}
	return path
}

// WriteCommitsCSV writes a per-repository commit export fixture
func WriteCommitsCSV(t *testing.T, dir, repo string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, repo+".csv")
	content := "timestamp,repository,author,hash,message\n"
	for _, row := range rows {
		content += row + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write commits fixture: %v", err)
	}
	return path
}

// WriteConfigYAML writes a config file fixture
func WriteConfigYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}
	return path
}
