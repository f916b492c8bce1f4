package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/iksnae/worklog-sync/internal/calendar"
)

// FakeCalendar is an in-memory calendar.Service for tests. It records
// created events and can simulate transient and terminal create failures.
type FakeCalendar struct {
	mu     sync.Mutex
	events []calendar.ExternalEvent
	nextID int

	// TransientEvery makes every Nth create call fail once with a
	// retryable error (0 disables).
	TransientEvery int
	// TerminalSessionIDs always fail terminally for these session ids.
	TerminalSessionIDs map[string]bool

	createCalls int
	failedOnce  map[string]bool
}

// NewFakeCalendar creates an empty fake calendar
func NewFakeCalendar() *FakeCalendar {
	return &FakeCalendar{failedOnce: make(map[string]bool)}
}

// Seed adds a pre-existing event, as if a human or an earlier run created it
func (f *FakeCalendar) Seed(ev calendar.ExternalEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.ID == "" {
		f.nextID++
		ev.ID = fmt.Sprintf("seeded-%d", f.nextID)
	}
	f.events = append(f.events, ev)
}

// ListEvents returns events intersecting [from, to]
func (f *FakeCalendar) ListEvents(_ context.Context, _ string, from, to time.Time) ([]calendar.ExternalEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []calendar.ExternalEvent
	for _, ev := range f.events {
		if ev.End.Before(from) || ev.Start.After(to) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// CreateEvent stores the event unless a simulated failure applies
func (f *FakeCalendar) CreateEvent(_ context.Context, _ string, payload *calendar.EventPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	sessionID := payload.Private[calendar.PropSessionID]

	if f.TerminalSessionIDs[sessionID] {
		return "", &googleapi.Error{Code: 400, Message: "invalid event payload"}
	}
	if f.TransientEvery > 0 && !f.failedOnce[sessionID] && f.createCalls%f.TransientEvery == 0 {
		f.failedOnce[sessionID] = true
		return "", &googleapi.Error{Code: 503, Message: "backend unavailable"}
	}

	f.nextID++
	id := fmt.Sprintf("evt-%d", f.nextID)
	f.events = append(f.events, calendar.ExternalEvent{
		ID:        id,
		Start:     payload.Start,
		End:       payload.End,
		Summary:   payload.Title,
		SessionID: sessionID,
	})
	return id, nil
}

// CreateCalls returns the number of create attempts observed
func (f *FakeCalendar) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

// EventCount returns the number of stored events
func (f *FakeCalendar) EventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}
