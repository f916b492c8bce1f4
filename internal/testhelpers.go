package internal

import (
	"time"
)

// MakeTestSession creates a real session for tests, spanning [start,
// start+dur] with work hours equal to the wall-clock span
func MakeTestSession(start time.Time, dur time.Duration) *WorkSession {
	end := start.Add(dur)
	return &WorkSession{
		SessionID:  MakeSessionID(start, SourceReal),
		StartTime:  start,
		EndTime:    end,
		WorkHours:  dur.Hours(),
		Type:       ClassifySessionType(start, end),
		Source:     SourceReal,
		Confidence: 1.0,
	}
}

// MakeTestCommit creates a commit record for tests
func MakeTestCommit(ts time.Time, repo, message string) RawCommit {
	return RawCommit{
		Timestamp:  ts,
		Repository: repo,
		Author:     "dev@example.com",
		Message:    message,
		Hash:       "deadbeef" + ts.Format("150405"),
	}
}
