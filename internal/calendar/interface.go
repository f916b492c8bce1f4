// Package calendar is the external calendar boundary: the minimal service
// contract the pipeline requires, its Google implementation, the
// capability-scoped wrapper, conflict resolution against existing events,
// and the idempotent synchronizer.
package calendar

import (
	"context"
	"errors"
	"time"

	"google.golang.org/api/googleapi"
)

// PropSessionID is the private extended-property key carrying the pipeline
// session id on events the pipeline created.
const PropSessionID = "worklog_session_id"

// Additional private extended-property keys
const (
	PropCategory  = "worklog_category"
	PropWorkHours = "worklog_work_hours"
	PropSource    = "worklog_source_type"
)

// ExternalEvent is the pipeline's view of an event already on the
// calendar. Once an event is on the calendar the external system owns it;
// the pipeline only ever holds this snapshot.
type ExternalEvent struct {
	ID        string
	Start     time.Time
	End       time.Time
	Summary   string
	SessionID string // from extended properties; empty for human-created events
}

// EventPayload is an event the pipeline intends to create. The pipeline
// owns it until CreateEvent hands it to the external system.
type EventPayload struct {
	Title       string
	Description string
	Location    string
	ColorID     string
	Start       time.Time
	End         time.Time
	Private     map[string]string
}

// Service is the minimal calendar contract the pipeline requires
type Service interface {
	// ListEvents returns the events on the calendar between from and to.
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]ExternalEvent, error)
	// CreateEvent creates the event and returns its external id. It may
	// fail with a retryable error (rate limit, transient network) or a
	// terminal one (validation, permission).
	CreateEvent(ctx context.Context, calendarID string, payload *EventPayload) (string, error)
}

// ErrScopeViolation is returned when a write targets a calendar other than
// the single configured one. The call never reaches the network.
var ErrScopeViolation = errors.New("calendar id outside configured write scope")

// IsRetryable reports whether an upload error is worth retrying. Rate
// limits and server-side failures are retryable; validation, auth, and
// permission failures are terminal, as is a scope violation.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrScopeViolation) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 403, 429, 500, 502, 503, 504:
			// 403 is how the Calendar API reports rate limiting
			return true
		default:
			return false
		}
	}

	// Unclassified errors are assumed transient (network timeouts, resets)
	return true
}
