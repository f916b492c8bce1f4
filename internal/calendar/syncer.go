package calendar

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/iksnae/worklog-sync/internal"
)

// SyncState tracks one session through the synchronization lifecycle, from
// pending through planning, upload, and verification. Terminal states are
// verified, planned_skip, and failed_terminal.
type SyncState string

// Lifecycle states
const (
	StatePending         SyncState = "pending"
	StatePlannedNew      SyncState = "planned_new"
	StatePlannedSkip     SyncState = "planned_skip"
	StateUploading       SyncState = "uploading"
	StateUploaded        SyncState = "uploaded"
	StateFailedRetryable SyncState = "failed_retryable"
	StateFailedTerminal  SyncState = "failed_terminal"
	StateVerified        SyncState = "verified"
	StateUnverified      SyncState = "unverified"
)

// PlannedEvent carries one session through upload
type PlannedEvent struct {
	Session  *internal.WorkSession
	Payload  *EventPayload
	State    SyncState
	EventID  string
	Attempts int
	Err      error
}

// UploadPlan is the per-run decision of what to create and what to skip.
// It is computed from the current session set and a fresh external
// snapshot, and discarded after upload.
type UploadPlan struct {
	New  []*PlannedEvent
	Skip []internal.SkippedUpload
}

// SyncOutcome summarizes an upload pass
type SyncOutcome struct {
	Uploaded []*PlannedEvent
	Failed   []internal.UploadFailure
}

// VerifyOutcome summarizes the post-upload verification query
type VerifyOutcome struct {
	Verified      int
	Unverified    []string
	VerifiedHours float64
}

// Syncer converts upload-eligible sessions to calendar events and creates
// them in rate-limited batches with bounded retry. It is the only pipeline
// component that performs blocking I/O.
type Syncer struct {
	service    Service
	calendarID string
	ledger     *internal.Ledger // optional

	BatchSize      int
	Workers        int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// limiter serializes outbound request timing across all workers
	limiter *rate.Limiter
}

// NewSyncer creates a Syncer over the scoped service. The ledger may be
// nil when no persistent mapping is wanted.
func NewSyncer(service Service, calendarID string, ledger *internal.Ledger, ratePerSecond float64, workers, batchSize, maxAttempts int) *Syncer {
	return &Syncer{
		service:        service,
		calendarID:     calendarID,
		ledger:         ledger,
		BatchSize:      batchSize,
		Workers:        workers,
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		limiter:        rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// BuildPlan re-checks every session against the latest external snapshot
// and the sync ledger. The resolver already filtered duplicates, but the
// calendar is shared: this defends against writes that landed since the
// resolution pass.
func (s *Syncer) BuildPlan(ctx context.Context, sessions []*internal.WorkSession) (*UploadPlan, error) {
	plan := &UploadPlan{}
	if len(sessions) == 0 {
		return plan, nil
	}

	from, to := coveringRange(sessions)
	events, err := s.service.ListEvents(ctx, s.calendarID, from.Add(-snapshotMargin), to.Add(snapshotMargin))
	if err != nil {
		return nil, err
	}

	existingIDs := make(map[string]bool)
	existingRanges := make(map[[2]int64]bool)
	for _, ev := range events {
		if ev.SessionID != "" {
			existingIDs[ev.SessionID] = true
		}
		existingRanges[[2]int64{ev.Start.Unix(), ev.End.Unix()}] = true
	}

	var ledgered map[string]string
	if s.ledger != nil {
		ledgered, err = s.ledger.SessionIDs()
		if err != nil {
			return nil, err
		}
	}

	for _, session := range sessions {
		switch {
		case existingIDs[session.SessionID]:
			plan.Skip = append(plan.Skip, internal.SkippedUpload{
				SessionID: session.SessionID, Reason: "already on calendar (session id)",
			})
		case existingRanges[[2]int64{session.StartTime.Unix(), session.EndTime.Unix()}]:
			plan.Skip = append(plan.Skip, internal.SkippedUpload{
				SessionID: session.SessionID, Reason: "already on calendar (exact time range)",
			})
		case ledgered[session.SessionID] != "":
			plan.Skip = append(plan.Skip, internal.SkippedUpload{
				SessionID: session.SessionID, Reason: "recorded in sync ledger",
			})
		default:
			plan.New = append(plan.New, &PlannedEvent{
				Session: session,
				Payload: ToEventPayload(session),
				State:   StatePlannedNew,
			})
		}
	}
	return plan, nil
}

// Upload creates the planned events in fixed-size batches. Within a batch
// individual creates run concurrently up to the worker limit; ordering is
// neither guaranteed nor required. A still-failing event is a reported
// failure, never a reason to abort the batch. Cancelling the context stops
// issuing new uploads; events already accepted stay (the external system
// offers no rollback).
func (s *Syncer) Upload(ctx context.Context, plan *UploadPlan) *SyncOutcome {
	outcome := &SyncOutcome{}
	var mu sync.Mutex

	for start := 0; start < len(plan.New); start += s.BatchSize {
		if ctx.Err() != nil {
			s.recordCancelled(plan.New[start:], outcome, &mu)
			break
		}

		end := start + s.BatchSize
		if end > len(plan.New) {
			end = len(plan.New)
		}
		batch := plan.New[start:end]
		internal.LogInfo("Uploading batch of %d event(s)", len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.Workers)
		for _, planned := range batch {
			planned := planned
			g.Go(func() error {
				s.uploadOne(gctx, planned)
				mu.Lock()
				defer mu.Unlock()
				switch planned.State {
				case StateUploaded:
					outcome.Uploaded = append(outcome.Uploaded, planned)
				default:
					outcome.Failed = append(outcome.Failed, internal.UploadFailure{
						SessionID: planned.Session.SessionID,
						Attempts:  planned.Attempts,
						Terminal:  planned.State == StateFailedTerminal,
						Reason:    planned.Err.Error(),
					})
				}
				// Individual failures never fail the group
				return nil
			})
		}
		_ = g.Wait()
	}

	if s.ledger != nil {
		for _, planned := range outcome.Uploaded {
			err := s.ledger.Record(internal.LedgerEntry{
				SessionID:    planned.Session.SessionID,
				EventID:      planned.EventID,
				CalendarID:   s.calendarID,
				SessionStart: planned.Session.StartTime,
				UploadedAt:   time.Now(),
			})
			if err != nil {
				internal.LogWarn("Failed to record ledger entry for %s: %v", planned.Session.SessionID, err)
			}
		}
	}
	return outcome
}

// uploadOne drives a single event through the retry loop
func (s *Syncer) uploadOne(ctx context.Context, planned *PlannedEvent) {
	planned.State = StateUploading
	backoff := s.InitialBackoff

	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		planned.Attempts = attempt

		if err := s.limiter.Wait(ctx); err != nil {
			planned.State = StateFailedTerminal
			planned.Err = err
			return
		}

		eventID, err := s.service.CreateEvent(ctx, s.calendarID, planned.Payload)
		if err == nil {
			planned.State = StateUploaded
			planned.EventID = eventID
			return
		}
		planned.Err = err

		if !IsRetryable(err) {
			internal.LogError("Terminal failure uploading %s: %v", planned.Session.SessionID, err)
			planned.State = StateFailedTerminal
			return
		}

		planned.State = StateFailedRetryable
		if attempt == s.MaxAttempts {
			internal.LogWarn("Giving up on %s after %d attempt(s): %v", planned.Session.SessionID, attempt, err)
			return
		}

		wait := backoff + time.Duration(rand.Int63n(int64(backoff)/4+1))
		internal.LogDebug("Retrying %s in %s (attempt %d/%d)", planned.Session.SessionID, wait, attempt, s.MaxAttempts)
		select {
		case <-ctx.Done():
			planned.Err = ctx.Err()
			return
		case <-time.After(wait):
		}

		backoff *= 2
		if backoff > s.MaxBackoff {
			backoff = s.MaxBackoff
		}
	}
}

// recordCancelled marks the not-yet-issued remainder of the plan
func (s *Syncer) recordCancelled(remaining []*PlannedEvent, outcome *SyncOutcome, mu *sync.Mutex) {
	mu.Lock()
	defer mu.Unlock()
	for _, planned := range remaining {
		if planned.State != StatePlannedNew {
			continue
		}
		outcome.Failed = append(outcome.Failed, internal.UploadFailure{
			SessionID: planned.Session.SessionID,
			Terminal:  true,
			Reason:    "run cancelled before upload",
		})
	}
}

// Verify re-queries the calendar and checks that every uploaded session is
// represented. Discrepancies are reported, never silently ignored.
func (s *Syncer) Verify(ctx context.Context, uploaded []*PlannedEvent) (*VerifyOutcome, error) {
	outcome := &VerifyOutcome{}
	if len(uploaded) == 0 {
		return outcome, nil
	}

	sessions := make([]*internal.WorkSession, len(uploaded))
	for i, planned := range uploaded {
		sessions[i] = planned.Session
	}
	from, to := coveringRange(sessions)

	events, err := s.service.ListEvents(ctx, s.calendarID, from.Add(-snapshotMargin), to.Add(snapshotMargin))
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool)
	for _, ev := range events {
		if ev.SessionID != "" {
			present[ev.SessionID] = true
		}
	}

	sort.Slice(uploaded, func(i, j int) bool {
		return uploaded[i].Session.SessionID < uploaded[j].Session.SessionID
	})
	for _, planned := range uploaded {
		if present[planned.Session.SessionID] {
			planned.State = StateVerified
			outcome.Verified++
			outcome.VerifiedHours += planned.Session.WorkHours
			continue
		}
		planned.State = StateUnverified
		outcome.Unverified = append(outcome.Unverified, planned.Session.SessionID)
		internal.LogWarn("Uploaded session %s not found in post-upload verification", planned.Session.SessionID)
	}
	return outcome, nil
}
