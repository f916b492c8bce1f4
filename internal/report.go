package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ConflictRecord describes one overlap between a pipeline session and a
// pre-existing external calendar event
type ConflictRecord struct {
	SessionID      string        `json:"session_id"`
	EventID        string        `json:"event_id"`
	Overlap        time.Duration `json:"overlap"`
	Action         string        `json:"action"` // "shifted", "flagged", "dropped"
	ShiftedStart   time.Time     `json:"shifted_start,omitempty"`
	OverlapMinutes float64       `json:"overlap_minutes"`
}

// UploadFailure describes one event that could not be created
type UploadFailure struct {
	SessionID string `json:"session_id"`
	Attempts  int    `json:"attempts"`
	Terminal  bool   `json:"terminal"`
	Reason    string `json:"reason"`
}

// SkippedUpload describes one event excluded from the upload plan
type SkippedUpload struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// RunReport is the machine-readable artifact of a full pipeline run. The
// run always completes and always emits one of these; every skip, flag,
// and failure appears here with a reason.
type RunReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	EventRows      int `json:"event_rows"`
	EventsSkipped  int `json:"event_rows_skipped"`
	CommitRows     int `json:"commit_rows"`
	CommitsSkipped int `json:"commit_rows_skipped"`

	Reconstructed     int                `json:"sessions_reconstructed"`
	RejectedIntervals []RejectedInterval `json:"rejected_intervals,omitempty"`
	Merged            int                `json:"reboot_merges"`
	Truncated         int                `json:"midnight_truncations"`

	CommitsContained  int `json:"commits_contained"`
	CommitsAdjacent   int `json:"commits_adjacent"`
	CommitsOrphaned   int `json:"commits_orphaned"`
	SyntheticSessions int `json:"synthetic_sessions"`

	BreaksInjected int               `json:"breaks_injected"`
	Dropped        []DroppedSession  `json:"dropped_sessions,omitempty"`
	Duplicates     []DuplicateRecord `json:"duplicates,omitempty"`

	ConflictsResolved int              `json:"conflicts_resolved"`
	ConflictsFlagged  int              `json:"conflicts_flagged"`
	Conflicts         []ConflictRecord `json:"conflicts,omitempty"`

	Uploaded int             `json:"events_uploaded"`
	Skipped  []SkippedUpload `json:"events_skipped,omitempty"`
	Failed   []UploadFailure `json:"events_failed,omitempty"`

	VerifiedCount int      `json:"verified_count"`
	Unverified    []string `json:"unverified_session_ids,omitempty"`
	VerifiedHours float64  `json:"verified_hours"`
	TargetHours   float64  `json:"target_hours,omitempty"`
}

// NewRunReport creates a report stamped with a fresh run id
func NewRunReport() *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Finish stamps the completion time
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

// Summary returns a short human-readable digest for the terminal
func (r *RunReport) Summary() string {
	return fmt.Sprintf(
		"reconstructed=%d synthetic=%d duplicates=%d conflicts(resolved/flagged)=%d/%d uploaded=%d skipped=%d failed=%d verified=%.2fh",
		r.Reconstructed, r.SyntheticSessions, len(r.Duplicates),
		r.ConflictsResolved, r.ConflictsFlagged,
		r.Uploaded, len(r.Skipped), len(r.Failed), r.VerifiedHours,
	)
}

// WriteFile writes the report as indented JSON under dir and returns the
// file path
func (r *RunReport) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s_%s.json", r.StartedAt.Format("20060102-150405"), r.RunID[:8]))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
