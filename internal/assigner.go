package internal

import (
	"sort"
	"time"
)

// Default assignment tuning
const (
	// DefaultAdjacencyWindow bounds how far a commit may sit from a session
	// boundary and still credit that session.
	DefaultAdjacencyWindow = 12 * time.Hour
	// DefaultClusterMargin pads a synthetic session around its commit cluster.
	DefaultClusterMargin = 45 * time.Minute
	// DefaultJitterSpread is the maximum synthetic boundary jitter in minutes.
	DefaultJitterSpread = 7

	syntheticMinDuration  = time.Hour
	syntheticBase         = 0.50
	syntheticPerCommit    = 0.05
	syntheticMaxCommitVal = 6
)

// Assigner attaches commits to sessions and manufactures synthetic
// sessions for commit clusters with no system-event coverage
type Assigner struct {
	AdjacencyWindow time.Duration
	ClusterMargin   time.Duration
	JitterSpread    int
}

// NewAssigner creates an Assigner with default tuning
func NewAssigner() *Assigner {
	return &Assigner{
		AdjacencyWindow: DefaultAdjacencyWindow,
		ClusterMargin:   DefaultClusterMargin,
		JitterSpread:    DefaultJitterSpread,
	}
}

// AssignmentResult is the output of a commit assignment pass
type AssignmentResult struct {
	Sessions  []*WorkSession // real + synthetic, time sorted
	Contained int            // commits attached by containment
	Adjacent  int            // commits attached to neighboring sessions
	Orphaned  int            // commits feeding synthetic generation
	Synthetic int            // synthetic sessions created
}

// Assign runs both assignment passes over time-sorted sessions.
//
// Pass one attaches each commit to the session containing its timestamp.
// Pass two attaches leftover commits to the nearest preceding and following
// sessions within the adjacency window; a near-boundary commit credits the
// neighboring session even without exact containment, deliberately
// over-inclusive. Commits with no neighbor in range are grouped by day and
// time-of-day bucket, one synthetic session per non-empty bucket.
func (a *Assigner) Assign(sessions []*WorkSession, commits []RawCommit) *AssignmentResult {
	result := &AssignmentResult{Sessions: sessions}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})

	var unassigned []RawCommit
	for _, commit := range commits {
		if a.assignContained(sessions, commit) {
			result.Contained++
			continue
		}
		unassigned = append(unassigned, commit)
	}

	var orphans []RawCommit
	for _, commit := range unassigned {
		if a.assignAdjacent(sessions, commit) {
			result.Adjacent++
			continue
		}
		orphans = append(orphans, commit)
	}
	result.Orphaned = len(orphans)

	synthetic := a.generateSynthetic(orphans)
	result.Synthetic = len(synthetic)
	result.Sessions = append(result.Sessions, synthetic...)

	sort.Slice(result.Sessions, func(i, j int) bool {
		return result.Sessions[i].StartTime.Before(result.Sessions[j].StartTime)
	})
	return result
}

// assignContained binary-searches for a session containing the commit time
func (a *Assigner) assignContained(sessions []*WorkSession, commit RawCommit) bool {
	idx := sort.Search(len(sessions), func(i int) bool {
		return !sessions[i].EndTime.Before(commit.Timestamp)
	})
	if idx < len(sessions) && sessions[idx].Contains(commit.Timestamp) {
		sessions[idx].Commits = append(sessions[idx].Commits, commit)
		return true
	}
	return false
}

// assignAdjacent attaches a commit to the nearest preceding session (ended
// before the commit) and the nearest following session (started after it),
// when either sits within the adjacency window. Attaching to both is
// intentional: a commit near a boundary is evidence for both sessions.
func (a *Assigner) assignAdjacent(sessions []*WorkSession, commit RawCommit) bool {
	var preceding, following *WorkSession

	idx := sort.Search(len(sessions), func(i int) bool {
		return sessions[i].StartTime.After(commit.Timestamp)
	})
	if idx < len(sessions) {
		following = sessions[idx]
	}
	for i := idx - 1; i >= 0; i-- {
		if sessions[i].EndTime.Before(commit.Timestamp) {
			preceding = sessions[i]
			break
		}
	}

	attached := false
	if preceding != nil && commit.Timestamp.Sub(preceding.EndTime) <= a.AdjacencyWindow {
		preceding.Commits = append(preceding.Commits, commit)
		attached = true
	}
	if following != nil && following.StartTime.Sub(commit.Timestamp) <= a.AdjacencyWindow {
		following.Commits = append(following.Commits, commit)
		attached = true
	}
	return attached
}

// generateSynthetic manufactures one synthetic session per non-empty
// (day, bucket) group of orphaned commits. Boundary jitter is seeded by
// the group key so reruns produce identical sessions.
func (a *Assigner) generateSynthetic(orphans []RawCommit) []*WorkSession {
	groups := make(map[string][]RawCommit)
	var keys []string
	for _, commit := range orphans {
		key := commit.Timestamp.Format("2006-01-02") + ":" + string(TimeOfDayBucket(commit.Timestamp))
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], commit)
	}
	sort.Strings(keys)

	var sessions []*WorkSession
	for _, key := range keys {
		group := groups[key]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})

		start := group[0].Timestamp.Add(-a.ClusterMargin + SeededJitter(key+":start", a.JitterSpread))
		end := group[len(group)-1].Timestamp.Add(a.ClusterMargin + SeededJitter(key+":end", a.JitterSpread))
		if end.Sub(start) < syntheticMinDuration {
			end = start.Add(syntheticMinDuration)
		}
		// Keep the session inside its calendar day
		if dayStart := startOfDay(group[0].Timestamp); start.Before(dayStart) {
			start = dayStart
		}
		if dayEnd := EndOfDay(group[0].Timestamp); end.After(dayEnd) {
			end = dayEnd
		}

		confidence := syntheticBase + syntheticPerCommit*float64(minInt(len(group), syntheticMaxCommitVal))

		sessions = append(sessions, &WorkSession{
			SessionID:  MakeSessionID(start, SourceSynthetic),
			StartTime:  start,
			EndTime:    end,
			WorkHours:  end.Sub(start).Hours(),
			Type:       ClassifySessionType(start, end),
			Source:     SourceSynthetic,
			Commits:    group,
			Confidence: confidence,
		})
		LogDebug("Synthetic session %s from %d orphaned commit(s)", key, len(group))
	}
	return sessions
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
