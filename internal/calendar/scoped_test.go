package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/iksnae/worklog-sync/internal"
	"github.com/iksnae/worklog-sync/internal/calendar"
	"github.com/iksnae/worklog-sync/testutil"
)

func TestScopedServiceAllowsConfiguredCalendar(t *testing.T) {
	fake := testutil.NewFakeCalendar()
	scoped := calendar.NewScopedService(fake, "work@example.com")
	ctx := context.Background()

	session := internal.MakeTestSession(ts(11, 9, 0), 2*time.Hour)
	id, err := scoped.CreateEvent(ctx, "work@example.com", calendar.ToEventPayload(session))
	if err != nil {
		t.Fatalf("CreateEvent() on configured calendar error = %v", err)
	}
	if id == "" {
		t.Error("CreateEvent() returned empty event id")
	}

	events, err := scoped.ListEvents(ctx, "work@example.com", ts(11, 0, 0), ts(12, 0, 0))
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("ListEvents() = %d events, want 1", len(events))
	}
}

func TestScopedServiceRefusesOtherCalendars(t *testing.T) {
	fake := testutil.NewFakeCalendar()
	scoped := calendar.NewScopedService(fake, "work@example.com")
	ctx := context.Background()

	session := internal.MakeTestSession(ts(11, 9, 0), 2*time.Hour)
	_, err := scoped.CreateEvent(ctx, "personal@example.com", calendar.ToEventPayload(session))
	if !errors.Is(err, calendar.ErrScopeViolation) {
		t.Fatalf("CreateEvent() error = %v, want ErrScopeViolation", err)
	}
	if fake.CreateCalls() != 0 {
		t.Error("refused create still reached the inner service")
	}
	if calendar.IsRetryable(err) {
		t.Error("scope violation classified as retryable")
	}

	_, err = scoped.ListEvents(ctx, "personal@example.com", ts(11, 0, 0), ts(12, 0, 0))
	if !errors.Is(err, calendar.ErrScopeViolation) {
		t.Errorf("ListEvents() error = %v, want ErrScopeViolation", err)
	}

	if scoped.CalendarID() != "work@example.com" {
		t.Errorf("CalendarID() = %q", scoped.CalendarID())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited 403", &googleapi.Error{Code: 403}, true},
		{"rate limited 429", &googleapi.Error{Code: 429}, true},
		{"server error 503", &googleapi.Error{Code: 503}, true},
		{"bad request 400", &googleapi.Error{Code: 400}, false},
		{"unauthorized 401", &googleapi.Error{Code: 401}, false},
		{"not found 404", &googleapi.Error{Code: 404}, false},
		{"scope violation", calendar.ErrScopeViolation, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"plain network error", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calendar.IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
