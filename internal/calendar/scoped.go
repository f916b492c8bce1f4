package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/iksnae/worklog-sync/internal"
)

// ScopedService wraps a Service and refuses any call whose target calendar
// differs from the single configured id. The external API's write scope is
// broader than the pipeline needs; this wrapper narrows it in code rather
// than relying on caller discipline.
type ScopedService struct {
	inner      Service
	calendarID string
}

// NewScopedService wraps inner so that only calendarID is reachable
func NewScopedService(inner Service, calendarID string) *ScopedService {
	return &ScopedService{inner: inner, calendarID: calendarID}
}

// CalendarID returns the single calendar this service will touch
func (s *ScopedService) CalendarID() string {
	return s.calendarID
}

// ListEvents delegates after the scope check
func (s *ScopedService) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]ExternalEvent, error) {
	if err := s.check(calendarID, "list"); err != nil {
		return nil, err
	}
	return s.inner.ListEvents(ctx, calendarID, from, to)
}

// CreateEvent delegates after the scope check. A rejected write never
// reaches the network.
func (s *ScopedService) CreateEvent(ctx context.Context, calendarID string, payload *EventPayload) (string, error) {
	if err := s.check(calendarID, "create"); err != nil {
		return "", err
	}
	return s.inner.CreateEvent(ctx, calendarID, payload)
}

func (s *ScopedService) check(calendarID, op string) error {
	if calendarID == s.calendarID {
		return nil
	}
	internal.LogError("SECURITY: refused %s call targeting calendar %q (configured: %q)", op, calendarID, s.calendarID)
	return fmt.Errorf("%s targeting %q: %w", op, calendarID, ErrScopeViolation)
}
