package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/iksnae/worklog-sync/internal"
)

// AutoResolveLimit is the overlap duration at and above which a conflict
// is never auto-resolved: a long overlap with a human's calendar entry is
// flagged for manual resolution, not shifted or overwritten.
const AutoResolveLimit = 2 * time.Hour

// maxShifts bounds the shift loop for one session
const maxShifts = 10

// snapshotMargin widens the query window around the working date range
const snapshotMargin = 24 * time.Hour

// Resolver detects and resolves overlaps between pipeline sessions and
// pre-existing events on the external calendar
type Resolver struct {
	service     Service
	calendarID  string
	MinDuration time.Duration // re-validation bound after a shift
}

// NewResolver creates a Resolver over the scoped service
func NewResolver(service Service, calendarID string) *Resolver {
	return &Resolver{
		service:     service,
		calendarID:  calendarID,
		MinDuration: internal.DefaultMinDuration,
	}
}

// Resolution is the output of a conflict resolution pass
type Resolution struct {
	Upload    []*internal.WorkSession // upload-eligible sessions
	Skipped   []internal.SkippedUpload
	Conflicts []internal.ConflictRecord
	Resolved  int
	Flagged   int
	Snapshot  []ExternalEvent // the external events consulted
}

// Resolve queries the calendar for the covering date range and walks every
// session. Sessions already represented externally (matching session id or
// exact time range) are skipped, not re-created. Overlaps with events the
// pipeline does not own are classified: short ones shift the session start
// past the conflicting event's end, long ones are flagged and excluded.
func (r *Resolver) Resolve(ctx context.Context, sessions []*internal.WorkSession) (*Resolution, error) {
	result := &Resolution{}
	if len(sessions) == 0 {
		return result, nil
	}

	from, to := coveringRange(sessions)
	events, err := r.service.ListEvents(ctx, r.calendarID, from.Add(-snapshotMargin), to.Add(snapshotMargin))
	if err != nil {
		return nil, err
	}
	result.Snapshot = events

	byID := make(map[string]ExternalEvent)
	byRange := make(map[[2]int64]ExternalEvent)
	var foreign []ExternalEvent
	for _, ev := range events {
		if ev.SessionID != "" {
			byID[ev.SessionID] = ev
		} else {
			foreign = append(foreign, ev)
		}
		byRange[[2]int64{ev.Start.Unix(), ev.End.Unix()}] = ev
	}
	sort.Slice(foreign, func(i, j int) bool {
		return foreign[i].Start.Before(foreign[j].Start)
	})

	for _, s := range sessions {
		if _, ok := byID[s.SessionID]; ok {
			result.Skipped = append(result.Skipped, internal.SkippedUpload{
				SessionID: s.SessionID, Reason: "already on calendar (session id)",
			})
			continue
		}
		if _, ok := byRange[[2]int64{s.StartTime.Unix(), s.EndTime.Unix()}]; ok {
			result.Skipped = append(result.Skipped, internal.SkippedUpload{
				SessionID: s.SessionID, Reason: "already on calendar (exact time range)",
			})
			continue
		}

		if r.resolveOverlaps(s, foreign, result) {
			result.Upload = append(result.Upload, s)
		}
	}
	return result, nil
}

// resolveOverlaps shifts or flags a session against the foreign events.
// Returns false when the session must be excluded from upload.
func (r *Resolver) resolveOverlaps(s *internal.WorkSession, foreign []ExternalEvent, result *Resolution) bool {
	for i := 0; i < maxShifts; i++ {
		conflict, overlap := firstOverlap(s, foreign)
		if overlap == 0 {
			return true
		}

		if overlap >= AutoResolveLimit {
			internal.LogWarn("Session %s overlaps external event %s by %s, flagging for manual resolution", s.SessionID, conflict.ID, overlap)
			result.Flagged++
			result.Conflicts = append(result.Conflicts, internal.ConflictRecord{
				SessionID:      s.SessionID,
				EventID:        conflict.ID,
				Overlap:        overlap,
				OverlapMinutes: overlap.Minutes(),
				Action:         "flagged",
			})
			return false
		}

		// Short overlap: move the session start past the conflicting event
		s.StartTime = conflict.End
		if dur := s.Duration(); dur.Hours() < s.WorkHours {
			s.WorkHours = dur.Hours()
		}
		result.Resolved++
		result.Conflicts = append(result.Conflicts, internal.ConflictRecord{
			SessionID:      s.SessionID,
			EventID:        conflict.ID,
			Overlap:        overlap,
			OverlapMinutes: overlap.Minutes(),
			Action:         "shifted",
			ShiftedStart:   s.StartTime,
		})

		// Re-validate the shifted session
		if s.Duration() < r.MinDuration {
			result.Skipped = append(result.Skipped, internal.SkippedUpload{
				SessionID: s.SessionID, Reason: "below minimum duration after conflict shift",
			})
			return false
		}
		if err := s.Validate(); err != nil {
			result.Skipped = append(result.Skipped, internal.SkippedUpload{
				SessionID: s.SessionID, Reason: err.Error(),
			})
			return false
		}
	}

	result.Skipped = append(result.Skipped, internal.SkippedUpload{
		SessionID: s.SessionID, Reason: "unresolvable after repeated conflict shifts",
	})
	return false
}

// firstOverlap returns the earliest foreign event overlapping the session
func firstOverlap(s *internal.WorkSession, foreign []ExternalEvent) (ExternalEvent, time.Duration) {
	for _, ev := range foreign {
		if d := internal.Overlap(s.StartTime, s.EndTime, ev.Start, ev.End); d > 0 {
			return ev, d
		}
	}
	return ExternalEvent{}, 0
}

// coveringRange returns the [min start, max end] of the session list
func coveringRange(sessions []*internal.WorkSession) (time.Time, time.Time) {
	from, to := sessions[0].StartTime, sessions[0].EndTime
	for _, s := range sessions[1:] {
		if s.StartTime.Before(from) {
			from = s.StartTime
		}
		if s.EndTime.After(to) {
			to = s.EndTime
		}
	}
	return from, to
}
