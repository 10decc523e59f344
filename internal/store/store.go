package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no appointment matches the given event id.
var ErrNotFound = errors.New("appointment not found")

// Appointment is a persisted booking record. EventID is the identifier the
// calendar provider assigned on creation; once set it uniquely identifies the
// record in both the provider and the local store, and update/cancel locate
// records by it rather than by thread id.
type Appointment struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // 24-hour HH:MM
	PatientName string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	City        string `json:"city"`
	Message     string `json:"message"`
	EventID     string `json:"event_id"`
	ThreadID    string `json:"thread_id"`
	Department  string `json:"department,omitempty"`
	Doctor      string `json:"doctor,omitempty"`
}

// AppointmentStore is the persistence contract for appointment records.
type AppointmentStore interface {
	// Create inserts a new record and returns its row id.
	Create(ctx context.Context, appt *Appointment) (int64, error)

	// GetByEventID returns the record with the given calendar event id, or
	// ErrNotFound.
	GetByEventID(ctx context.Context, eventID string) (*Appointment, error)

	// UpdateTimeByEventID rewrites the stored date/time of the record with
	// the given calendar event id, or returns ErrNotFound. The lookup and
	// mutation are atomic.
	UpdateTimeByEventID(ctx context.Context, eventID, newDate, newTime string) error

	// DeleteByEventID removes the record with the given calendar event id,
	// or returns ErrNotFound. The lookup and deletion are atomic.
	DeleteByEventID(ctx context.Context, eventID string) error

	// ListOrdered returns all records ordered by date, then time.
	ListOrdered(ctx context.Context) ([]Appointment, error)

	// DeleteAll removes every record. Administrative operation.
	DeleteAll(ctx context.Context) error
}
