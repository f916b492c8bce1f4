package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleService implements Service over the Google Calendar v3 API
type GoogleService struct {
	svc *gcal.Service
}

// NewGoogleService builds a GoogleService from a service-account
// credentials file
func NewGoogleService(ctx context.Context, credentialsFile string) (*GoogleService, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar client: %w", err)
	}
	return &GoogleService{svc: svc}, nil
}

// ListEvents returns single (expanded) events in [from, to], ordered by
// start time
func (g *GoogleService) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]ExternalEvent, error) {
	var events []ExternalEvent

	call := g.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250)

	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			ev, err := fromAPIEvent(item)
			if err != nil {
				// All-day and malformed entries are outside the pipeline's
				// interest; skip them
				continue
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// CreateEvent creates the event and returns the external id
func (g *GoogleService) CreateEvent(ctx context.Context, calendarID string, payload *EventPayload) (string, error) {
	event := &gcal.Event{
		Summary:     payload.Title,
		Description: payload.Description,
		Location:    payload.Location,
		ColorId:     payload.ColorID,
		Start:       &gcal.EventDateTime{DateTime: payload.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: payload.End.Format(time.RFC3339)},
	}
	if len(payload.Private) > 0 {
		event.ExtendedProperties = &gcal.EventExtendedProperties{Private: payload.Private}
	}

	created, err := g.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return created.Id, nil
}

// fromAPIEvent maps an API event onto the pipeline's snapshot type
func fromAPIEvent(item *gcal.Event) (ExternalEvent, error) {
	if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
		return ExternalEvent{}, fmt.Errorf("event %s has no timed start/end", item.Id)
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return ExternalEvent{}, fmt.Errorf("event %s has bad start: %w", item.Id, err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return ExternalEvent{}, fmt.Errorf("event %s has bad end: %w", item.Id, err)
	}

	ev := ExternalEvent{
		ID:      item.Id,
		Start:   start,
		End:     end,
		Summary: item.Summary,
	}
	if item.ExtendedProperties != nil {
		ev.SessionID = item.ExtendedProperties.Private[PropSessionID]
	}
	return ev, nil
}
