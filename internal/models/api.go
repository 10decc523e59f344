package models

import "github.com/sunrise-assist/server/internal/store"

// ChatRequest is the body of POST /chat. ThreadID is optional; when omitted
// or unknown a fresh thread is created.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ChatResponse carries the assistant's reply and the (possibly new) thread id.
type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Response string `json:"response"`
}

// ResetRequest is the body of POST /reset.
type ResetRequest struct {
	ThreadID string `json:"thread_id"`
}

// StatusResponse is the generic success payload for administrative endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AppointmentsResponse wraps the persisted appointment records.
type AppointmentsResponse struct {
	Appointments []store.Appointment `json:"appointments"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
