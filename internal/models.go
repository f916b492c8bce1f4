package internal

import (
	"fmt"
	"time"
)

// Event kinds found in the system event export.
const (
	EventLogon    = "logon"
	EventLogoff   = "logoff"
	EventStartup  = "startup"
	EventShutdown = "shutdown"
	EventSleep    = "sleep"
)

// SessionType classifies a session by its wall-clock span
type SessionType string

// Session types
const (
	SessionMorning   SessionType = "morning"
	SessionAfternoon SessionType = "afternoon"
	SessionEvening   SessionType = "evening"
	SessionFullDay   SessionType = "full_day"
)

// SourceType records how a session was derived
type SourceType string

// Source types
const (
	SourceReal      SourceType = "real"
	SourceSynthetic SourceType = "synthetic"
)

// RawEvent represents a single record from the system event export.
// Records are read-only inputs and are never mutated.
type RawEvent struct {
	Timestamp time.Time
	Kind      string // logon, logoff, startup, shutdown, sleep
	Host      string
	User      string
}

// IsSessionOpen reports whether the event opens a work interval
func (e *RawEvent) IsSessionOpen() bool {
	return e.Kind == EventLogon || e.Kind == EventStartup
}

// IsSessionClose reports whether the event closes a work interval
func (e *RawEvent) IsSessionClose() bool {
	return e.Kind == EventLogoff || e.Kind == EventShutdown || e.Kind == EventSleep
}

// RawCommit represents a single record from a per-repository commit export.
// Records are read-only inputs and are never mutated.
type RawCommit struct {
	Timestamp  time.Time
	Repository string
	Author     string
	Message    string
	Hash       string
}

// WorkSession is the canonical reconstructed work interval.
//
// It is created by the Reconstructor (real) or the Assigner (synthetic),
// adjusted in place by the Polisher and the conflict resolver, and dropped
// by the Deduplicator when identified as a duplicate.
type WorkSession struct {
	SessionID  string      `json:"session_id"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    time.Time   `json:"end_time"`
	WorkHours  float64     `json:"work_hours"` // declared hours, breaks excluded
	Type       SessionType `json:"session_type"`
	Source     SourceType  `json:"source_type"`
	Commits    []RawCommit `json:"assigned_commits,omitempty"`
	Breaks     []Break     `json:"breaks,omitempty"`
	Category   string      `json:"category,omitempty"`
	Confidence float64     `json:"confidence_score"`
}

// Duration returns the wall-clock span of the session
func (s *WorkSession) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Date returns the calendar date of the session start
func (s *WorkSession) Date() string {
	return s.StartTime.Format("2006-01-02")
}

// Contains reports whether t falls inside [start, end]
func (s *WorkSession) Contains(t time.Time) bool {
	return !t.Before(s.StartTime) && !t.After(s.EndTime)
}

// workHoursEpsilon absorbs float noise from break subtraction
const workHoursEpsilon = 1e-9

// Validate checks the session invariants. A session failing validation is
// dropped with the returned reason and never uploaded.
func (s *WorkSession) Validate() error {
	if s.SessionID == "" {
		return &SessionError{SessionID: s.SessionID, Reason: "empty session id"}
	}
	if !s.StartTime.Before(s.EndTime) {
		return &SessionError{SessionID: s.SessionID, Reason: "start not before end"}
	}
	if s.Duration() > 24*time.Hour {
		return &SessionError{SessionID: s.SessionID, Reason: "duration exceeds 24h"}
	}
	if s.WorkHours > s.Duration().Hours()+workHoursEpsilon {
		return &SessionError{SessionID: s.SessionID, Reason: "work hours exceed wall-clock duration"}
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return &SessionError{SessionID: s.SessionID, Reason: "confidence out of range"}
	}
	return nil
}

// MakeSessionID derives the stable session identifier from the start time
// and the source type. It must be deterministic across runs.
func MakeSessionID(start time.Time, source SourceType) string {
	return fmt.Sprintf("ws-%s-%s", start.Format("20060102-1504"), source)
}

// ClassifySessionType derives the session type from the wall-clock span.
// Spans of seven hours or more are full_day; shorter spans are bucketed by
// the midpoint hour.
func ClassifySessionType(start, end time.Time) SessionType {
	if end.Sub(start) >= 7*time.Hour {
		return SessionFullDay
	}
	mid := start.Add(end.Sub(start) / 2)
	switch h := mid.Hour(); {
	case h < 12:
		return SessionMorning
	case h < 17:
		return SessionAfternoon
	default:
		return SessionEvening
	}
}

// TimeOfDayBucket maps a timestamp to the morning/afternoon/evening bucket
// used for synthetic session grouping.
func TimeOfDayBucket(t time.Time) SessionType {
	switch h := t.Hour(); {
	case h < 12:
		return SessionMorning
	case h < 17:
		return SessionAfternoon
	default:
		return SessionEvening
	}
}
