// Package calendar abstracts the external scheduling provider. The service
// only needs event CRUD; the provider assigns an opaque event id on creation
// which becomes the appointment's canonical identifier.
package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrEventNotFound is returned when the provider has no event with the
// requested id.
var ErrEventNotFound = errors.New("calendar event not found")

// Event is a provider-agnostic calendar entry.
type Event struct {
	ID          string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// Provider is the external scheduling service contract.
type Provider interface {
	// CreateEvent inserts the event and returns the provider-assigned id.
	CreateEvent(ctx context.Context, ev Event) (string, error)

	// GetEvent fetches an event by id, or returns ErrEventNotFound.
	GetEvent(ctx context.Context, eventID string) (*Event, error)

	// UpdateEvent rewrites the event identified by ev.ID.
	UpdateEvent(ctx context.Context, ev Event) error

	// DeleteEvent removes the event, or returns ErrEventNotFound.
	DeleteEvent(ctx context.Context, eventID string) error
}

// Config holds calendar provider settings sourced from the environment.
type Config struct {
	CalendarID     string `envconfig:"CALENDAR_ID" default:"primary"`
	Timezone       string `envconfig:"CALENDAR_TIMEZONE" default:"Asia/Kolkata"`
	ClientID       string `envconfig:"CALENDAR_CLIENT_ID"`
	ClientSecret   string `envconfig:"CALENDAR_CLIENT_SECRET"`
	TokenPath      string `envconfig:"CALENDAR_TOKEN_PATH" default:"token.json"`
	RequestTimeout int    `envconfig:"CALENDAR_REQUEST_TIMEOUT" default:"15"`
}
