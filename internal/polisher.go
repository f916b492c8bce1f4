package internal

import (
	"time"
)

// fullDaySpan is the original span at which break injection kicks in
const fullDaySpan = 7 * time.Hour

// Polisher rounds session boundaries onto the five-minute grid and injects
// breaks into full-day sessions. Breaks are subtracted from declared work
// hours; the session envelope is never changed by a break.
type Polisher struct{}

// NewPolisher creates a new Polisher
func NewPolisher() *Polisher {
	return &Polisher{}
}

// DroppedSession records a session removed for an invariant violation
type DroppedSession struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// PolishResult is the output of a polish pass
type PolishResult struct {
	Sessions []*WorkSession
	Dropped  []DroppedSession
	Breaks   int // break windows injected
}

// Polish mutates each session in place: boundaries rounded, breaks
// injected, work hours recomputed, session type re-derived from the final
// interval. Sessions violating an invariant after polishing are dropped
// with a reason rather than uploaded.
func (p *Polisher) Polish(sessions []*WorkSession) *PolishResult {
	result := &PolishResult{}

	for _, s := range sessions {
		originalSpan := s.Duration()

		s.StartTime = RoundToFiveMinutes(s.StartTime)
		s.EndTime = RoundToFiveMinutes(s.EndTime)
		if !s.StartTime.Before(s.EndTime) {
			result.Dropped = append(result.Dropped, DroppedSession{
				SessionID: s.SessionID,
				Reason:    "interval collapsed by rounding",
			})
			continue
		}

		s.WorkHours = s.Duration().Hours()

		if originalSpan >= fullDaySpan {
			result.Breaks += p.injectBreaks(s)
		}

		s.Type = ClassifySessionType(s.StartTime, s.EndTime)

		if err := s.Validate(); err != nil {
			LogWarn("Dropping session after polish: %v", err)
			result.Dropped = append(result.Dropped, DroppedSession{
				SessionID: s.SessionID,
				Reason:    err.Error(),
			})
			continue
		}
		result.Sessions = append(result.Sessions, s)
	}
	return result
}

// injectBreaks adds the lunch break and, when the session runs past 18:00,
// the dinner break. Only the portion of a break inside the session envelope
// counts against work hours. Break placement is seeded by the session id so
// reruns land the same windows.
func (p *Polisher) injectBreaks(s *WorkSession) int {
	injected := 0

	lunch := LunchBreak(s.StartTime, s.SessionID)
	if d := Overlap(s.StartTime, s.EndTime, lunch.Start, lunch.End()); d > 0 {
		s.WorkHours -= d.Hours()
		s.Breaks = append(s.Breaks, lunch)
		injected++
	}

	dinnerCutoff := time.Date(s.StartTime.Year(), s.StartTime.Month(), s.StartTime.Day(), 18, 0, 0, 0, s.StartTime.Location())
	if s.EndTime.After(dinnerCutoff) {
		dinner := DinnerBreak(s.StartTime, s.SessionID)
		if d := Overlap(s.StartTime, s.EndTime, dinner.Start, dinner.End()); d > 0 {
			s.WorkHours -= d.Hours()
			s.Breaks = append(s.Breaks, dinner)
			injected++
		}
	}

	if s.WorkHours < 0 {
		s.WorkHours = 0
	}
	return injected
}
