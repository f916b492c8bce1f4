package internal

import (
	"time"
)

// Deduplicator removes duplicate sessions before upload
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// DuplicateRecord explains one dropped session, kept for the run report
type DuplicateRecord struct {
	SessionID string `json:"session_id"`
	KeptID    string `json:"kept_session_id"`
	Reason    string `json:"reason"`
}

// DedupResult is the output of a deduplication pass
type DedupResult struct {
	Sessions   []*WorkSession
	Duplicates []DuplicateRecord
}

// Deduplicate drops sessions colliding on session id or on the exact
// (start, end) pair, keeping the first occurrence. Synthetic sessions are
// additionally unique per (date, bucket): two synthetic sessions for the
// same morning must never both survive, even if rounding separated their
// times. Every drop is recorded with a reason.
func (d *Deduplicator) Deduplicate(sessions []*WorkSession) *DedupResult {
	result := &DedupResult{}

	byID := make(map[string]string)
	byRange := make(map[[2]int64]string)
	byBucket := make(map[string]string)

	for _, s := range sessions {
		if kept, ok := byID[s.SessionID]; ok {
			result.Duplicates = append(result.Duplicates, DuplicateRecord{
				SessionID: s.SessionID, KeptID: kept, Reason: "duplicate session id",
			})
			continue
		}

		rangeKey := [2]int64{s.StartTime.Unix(), s.EndTime.Unix()}
		if kept, ok := byRange[rangeKey]; ok {
			result.Duplicates = append(result.Duplicates, DuplicateRecord{
				SessionID: s.SessionID, KeptID: kept, Reason: "duplicate start/end pair",
			})
			continue
		}

		if s.Source == SourceSynthetic {
			bucketKey := s.Date() + ":" + string(TimeOfDayBucket(s.StartTime))
			if kept, ok := byBucket[bucketKey]; ok {
				result.Duplicates = append(result.Duplicates, DuplicateRecord{
					SessionID: s.SessionID, KeptID: kept, Reason: "duplicate synthetic bucket " + bucketKey,
				})
				continue
			}
			byBucket[bucketKey] = s.SessionID
		}

		byID[s.SessionID] = s.SessionID
		byRange[rangeKey] = s.SessionID
		result.Sessions = append(result.Sessions, s)
	}

	if n := len(result.Duplicates); n > 0 {
		LogInfo("Deduplication removed %d session(s)", n)
	}
	return result
}

// HoursTotal sums declared work hours over a session list, a convenience
// for report and verification totals.
func HoursTotal(sessions []*WorkSession) float64 {
	var total float64
	for _, s := range sessions {
		total += s.WorkHours
	}
	return total
}

// SessionsInRange filters sessions to those starting within [from, to)
func SessionsInRange(sessions []*WorkSession, from, to time.Time) []*WorkSession {
	var out []*WorkSession
	for _, s := range sessions {
		if !s.StartTime.Before(from) && s.StartTime.Before(to) {
			out = append(out, s)
		}
	}
	return out
}
