package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	logx "github.com/sunrise-assist/server/pkg/logger"
)

// GoogleProvider implements Provider on the Google Calendar API.
type GoogleProvider struct {
	svc        *calendarapi.Service
	calendarID string
	timezone   string
	timeout    time.Duration
}

// NewGoogleProvider builds the Calendar API client from the credential
// source.
func NewGoogleProvider(ctx context.Context, cfg Config, creds CredentialSource) (*GoogleProvider, error) {
	ts, err := creds.TokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire calendar credentials: %w", err)
	}
	svc, err := calendarapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleProvider{
		svc:        svc,
		calendarID: cfg.CalendarID,
		timezone:   cfg.Timezone,
		timeout:    timeout,
	}, nil
}

// CreateEvent inserts the event with email and popup reminders and returns
// the provider-assigned event id.
func (p *GoogleProvider) CreateEvent(ctx context.Context, ev Event) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	created, err := p.svc.Events.Insert(p.calendarID, p.toAPIEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	logx.Debug().Str("event_id", created.Id).Msg("calendar event created")
	return created.Id, nil
}

// GetEvent fetches the event by id.
func (p *GoogleProvider) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ev, err := p.svc.Events.Get(p.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err, "get calendar event")
	}
	start, err := parseEventTime(ev.Start)
	if err != nil {
		return nil, fmt.Errorf("parse event start: %w", err)
	}
	end, err := parseEventTime(ev.End)
	if err != nil {
		return nil, fmt.Errorf("parse event end: %w", err)
	}
	return &Event{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start:       start,
		End:         end,
	}, nil
}

// UpdateEvent rewrites the event identified by ev.ID.
func (p *GoogleProvider) UpdateEvent(ctx context.Context, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.svc.Events.Update(p.calendarID, ev.ID, p.toAPIEvent(ev)).Context(ctx).Do(); err != nil {
		return wrapAPIError(err, "update calendar event")
	}
	return nil
}

// DeleteEvent removes the event.
func (p *GoogleProvider) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.svc.Events.Delete(p.calendarID, eventID).Context(ctx).Do(); err != nil {
		return wrapAPIError(err, "delete calendar event")
	}
	return nil
}

func (p *GoogleProvider) toAPIEvent(ev Event) *calendarapi.Event {
	return &calendarapi.Event{
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start: &calendarapi.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: p.timezone,
		},
		End: &calendarapi.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: p.timezone,
		},
		Reminders: &calendarapi.EventReminders{
			UseDefault: false,
			Overrides: []*calendarapi.EventReminder{
				{Method: "email", Minutes: 30},
				{Method: "popup", Minutes: 10},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

func parseEventTime(t *calendarapi.EventDateTime) (time.Time, error) {
	if t == nil || t.DateTime == "" {
		return time.Time{}, errors.New("event has no datetime")
	}
	return time.Parse(time.RFC3339, t.DateTime)
}

func wrapAPIError(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return ErrEventNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ Provider = (*GoogleProvider)(nil)
