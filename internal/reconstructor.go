package internal

import (
	"sort"
	"time"
)

// Default reconstruction thresholds
const (
	DefaultRebootGap   = 5 * time.Minute
	DefaultMinDuration = 30 * time.Minute
	DefaultMaxDuration = 24 * time.Hour
)

// Confidence penalties applied for corrections the reconstructor has to
// make to the raw evidence
const (
	mergePenalty    = 0.05
	truncatePenalty = 0.10
	minConfidence   = 0.50
)

// Reconstructor merges raw logon/logoff pairs into work sessions
type Reconstructor struct {
	RebootGap   time.Duration // logoff-to-logon gaps up to this merge into one session
	MinDuration time.Duration
	MaxDuration time.Duration
}

// NewReconstructor creates a Reconstructor with default thresholds
func NewReconstructor() *Reconstructor {
	return &Reconstructor{
		RebootGap:   DefaultRebootGap,
		MinDuration: DefaultMinDuration,
		MaxDuration: DefaultMaxDuration,
	}
}

// RejectedInterval records a candidate interval dropped during
// reconstruction, kept for the run report
type RejectedInterval struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Host   string    `json:"host"`
	Reason string    `json:"reason"`
}

// ReconstructionResult is the output of a reconstruction pass
type ReconstructionResult struct {
	Sessions  []*WorkSession
	Rejected  []RejectedInterval
	Merged    int // reboot-gap merges applied
	Truncated int // sessions cut at the day boundary
}

// candidate is a host-local interval before validation
type candidate struct {
	start     time.Time
	end       time.Time
	host      string
	merges    int
	truncated bool
}

// Reconstruct pairs each session-opening event with the next closing event
// on the same host, merges intervals separated by a reboot-sized gap, and
// truncates intervals that cross midnight at 23:59:59 on the start date.
// Intervals outside the plausible duration bounds are rejected with a
// reason, never silently dropped.
func (r *Reconstructor) Reconstruct(events []RawEvent) *ReconstructionResult {
	result := &ReconstructionResult{}

	byHost := make(map[string][]RawEvent)
	var hosts []string
	for _, ev := range events {
		if _, ok := byHost[ev.Host]; !ok {
			hosts = append(hosts, ev.Host)
		}
		byHost[ev.Host] = append(byHost[ev.Host], ev)
	}
	sort.Strings(hosts)

	var candidates []candidate
	for _, host := range hosts {
		candidates = append(candidates, r.pairHost(host, byHost[host], result)...)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].start.Before(candidates[j].start)
	})

	candidates = r.mergeRebootGaps(candidates, result)

	for _, c := range candidates {
		if crossed := !sameDay(c.start, c.end); crossed {
			LogWarn("Session starting %s crosses midnight, truncating at end of day", c.start.Format(time.RFC3339))
			c.end = EndOfDay(c.start)
			c.truncated = true
			result.Truncated++
		}

		dur := c.end.Sub(c.start)
		if dur < r.MinDuration {
			result.Rejected = append(result.Rejected, RejectedInterval{
				Start: c.start, End: c.end, Host: c.host,
				Reason: "below minimum duration",
			})
			continue
		}
		if dur > r.MaxDuration {
			result.Rejected = append(result.Rejected, RejectedInterval{
				Start: c.start, End: c.end, Host: c.host,
				Reason: "exceeds maximum plausible duration",
			})
			continue
		}

		confidence := 1.0 - float64(c.merges)*mergePenalty
		if c.truncated {
			confidence -= truncatePenalty
		}
		if confidence < minConfidence {
			confidence = minConfidence
		}

		session := &WorkSession{
			SessionID:  MakeSessionID(c.start, SourceReal),
			StartTime:  c.start,
			EndTime:    c.end,
			WorkHours:  dur.Hours(),
			Type:       ClassifySessionType(c.start, c.end),
			Source:     SourceReal,
			Confidence: confidence,
		}
		result.Sessions = append(result.Sessions, session)
	}

	sort.Slice(result.Sessions, func(i, j int) bool {
		return result.Sessions[i].StartTime.Before(result.Sessions[j].StartTime)
	})
	return result
}

// pairHost walks one host's event stream pairing opens with the next close
func (r *Reconstructor) pairHost(host string, events []RawEvent, result *ReconstructionResult) []candidate {
	var candidates []candidate
	var open *time.Time

	for _, ev := range events {
		switch {
		case ev.IsSessionOpen():
			if open == nil {
				t := ev.Timestamp
				open = &t
			}
			// A second logon while open is a no-op (screen unlock, re-auth)
		case ev.IsSessionClose():
			if open == nil {
				LogDebug("Ignoring %s on %s with no open session", ev.Kind, host)
				continue
			}
			if !ev.Timestamp.After(*open) {
				LogDebug("Ignoring non-positive interval on %s at %s", host, ev.Timestamp.Format(time.RFC3339))
				open = nil
				continue
			}
			candidates = append(candidates, candidate{start: *open, end: ev.Timestamp, host: host})
			open = nil
		}
	}

	if open != nil {
		result.Rejected = append(result.Rejected, RejectedInterval{
			Start: *open, End: *open, Host: host,
			Reason: "logon without matching logoff",
		})
	}
	return candidates
}

// mergeRebootGaps coalesces intervals separated by at most the reboot gap
func (r *Reconstructor) mergeRebootGaps(candidates []candidate, result *ReconstructionResult) []candidate {
	if len(candidates) == 0 {
		return candidates
	}

	merged := []candidate{candidates[0]}
	for _, next := range candidates[1:] {
		last := &merged[len(merged)-1]
		gap := next.start.Sub(last.end)
		if gap >= 0 && gap <= r.RebootGap {
			last.end = next.end
			last.merges++
			result.Merged++
			LogDebug("Merged reboot gap of %s at %s", gap, next.start.Format(time.RFC3339))
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
