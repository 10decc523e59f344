package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/sunrise-assist/server/internal/calendar"
	"github.com/sunrise-assist/server/internal/store"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

const (
	dateTimeLayout = "2006-01-02 15:04"

	defaultDuration = time.Hour

	eventSummary = "Medical Appointment"

	noThreadResult   = "Error: no active conversation thread; cannot manage appointments."
	badFormatResult  = "Failed due to invalid date or time format. Please use YYYY-MM-DD for date and 24-hour HH:MM for time."
	notFoundTemplate = "No appointment found with event ID %s."
)

// ===================================
// Book Appointment Tool
// ===================================

type BookAppointmentInput struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	City        string `json:"city"`
	UserMessage string `json:"user_message"`
	Department  string `json:"department,omitempty"`
	Doctor      string `json:"doctor,omitempty"`
}

func createBookAppointmentTool(deps Deps) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolBookAppointment,
			Desc: "Book a medical appointment: creates a calendar event and stores the patient details, department, and doctor. Call only after the user has confirmed all collected details.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"date": {
					Type:     "string",
					Desc:     "Appointment date in YYYY-MM-DD format, e.g. 2025-12-25.",
					Required: true,
				},
				"time": {
					Type:     "string",
					Desc:     "Appointment time in 24-hour HH:MM format, e.g. 14:30.",
					Required: true,
				},
				"name": {
					Type:     "string",
					Desc:     "Patient's full name.",
					Required: true,
				},
				"phone": {
					Type:     "string",
					Desc:     "Patient's phone number.",
					Required: true,
				},
				"email": {
					Type:     "string",
					Desc:     "Patient's email address.",
					Required: true,
				},
				"city": {
					Type:     "string",
					Desc:     "Patient's city.",
					Required: true,
				},
				"user_message": {
					Type:     "string",
					Desc:     "Reason for the appointment in the user's words.",
					Required: true,
				},
				"department": {
					Type: "string",
					Desc: "Recommended or requested department, if known.",
				},
				"doctor": {
					Type: "string",
					Desc: "Recommended or requested doctor, if known.",
				},
			}),
		},
		func(ctx context.Context, in *BookAppointmentInput) (*Output, error) {
			threadID, ok := ThreadIDFromContext(ctx)
			if !ok {
				return &Output{Result: noThreadResult}, nil
			}

			// Fall back to the carried triage recommendation for fields the
			// model omitted.
			if in.Department == "" || in.Doctor == "" {
				if tc, err := deps.Threads.Context(ctx, threadID); err == nil {
					if in.Department == "" {
						in.Department = tc.Department
					}
					if in.Doctor == "" {
						in.Doctor = tc.Doctor
					}
				}
			}

			start, err := time.ParseInLocation(dateTimeLayout, in.Date+" "+in.Time, deps.Location)
			if err != nil {
				return &Output{Result: badFormatResult}, nil
			}
			end := start.Add(defaultDuration)

			eventID, err := deps.Calendar.CreateEvent(ctx, calendar.Event{
				Summary:  eventSummary,
				Location: deps.HospitalName,
				Description: fmt.Sprintf(
					"Patient: %s\nPhone: %s\nEmail: %s\nCity: %s\nMessage: %s\nDepartment: %s\nDoctor: %s",
					in.Name, in.Phone, in.Email, in.City, in.UserMessage, in.Department, in.Doctor),
				Start: start,
				End:   end,
			})
			if err != nil {
				logx.Error().Err(err).Str("thread_id", threadID).Msg("calendar create failed")
				return &Output{Result: fmt.Sprintf("Failed to book appointment: the calendar service is unavailable (%v).", err)}, nil
			}

			if _, err := deps.Store.Create(ctx, &store.Appointment{
				Date:        in.Date,
				Time:        in.Time,
				PatientName: in.Name,
				Phone:       in.Phone,
				Email:       in.Email,
				City:        in.City,
				Message:     in.UserMessage,
				EventID:     eventID,
				ThreadID:    threadID,
				Department:  in.Department,
				Doctor:      in.Doctor,
			}); err != nil {
				logx.Error().Err(err).Str("event_id", eventID).Msg("appointment insert failed")
				return &Output{Result: fmt.Sprintf("Failed to store appointment details: %v.", err)}, nil
			}

			result := fmt.Sprintf("Appointment successfully booked. Event ID: %s.", eventID)
			if in.Department != "" || in.Doctor != "" {
				result += fmt.Sprintf(" Assigned to %s with %s.", in.Department, in.Doctor)
			}
			return &Output{Result: result}, nil
		},
	)
}

// ===================================
// Update Appointment Tool
// ===================================

type UpdateAppointmentInput struct {
	EventID string `json:"event_id"`
	NewDate string `json:"new_date"`
	NewTime string `json:"new_time"`
}

func createUpdateAppointmentTool(deps Deps) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolUpdateAppointment,
			Desc: "Reschedule an existing appointment identified by its event ID: moves the calendar event and updates the stored record. The original event duration is preserved.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"event_id": {
					Type:     "string",
					Desc:     "Calendar event ID returned when the appointment was booked.",
					Required: true,
				},
				"new_date": {
					Type:     "string",
					Desc:     "New date in YYYY-MM-DD format.",
					Required: true,
				},
				"new_time": {
					Type:     "string",
					Desc:     "New time in 24-hour HH:MM format.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *UpdateAppointmentInput) (*Output, error) {
			if _, ok := ThreadIDFromContext(ctx); !ok {
				return &Output{Result: noThreadResult}, nil
			}

			// Lookup by event id: any thread may manage any appointment once
			// it holds the identifier.
			if _, err := deps.Store.GetByEventID(ctx, in.EventID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return &Output{Result: fmt.Sprintf(notFoundTemplate, in.EventID)}, nil
				}
				logx.Error().Err(err).Str("event_id", in.EventID).Msg("appointment lookup failed")
				return &Output{Result: fmt.Sprintf("Failed to update appointment: %v.", err)}, nil
			}

			ev, err := deps.Calendar.GetEvent(ctx, in.EventID)
			if err != nil {
				if errors.Is(err, calendar.ErrEventNotFound) {
					return &Output{Result: fmt.Sprintf(notFoundTemplate, in.EventID)}, nil
				}
				logx.Error().Err(err).Str("event_id", in.EventID).Msg("calendar get failed")
				return &Output{Result: fmt.Sprintf("Failed to update appointment: the calendar service is unavailable (%v).", err)}, nil
			}

			newStart, err := time.ParseInLocation(dateTimeLayout, in.NewDate+" "+in.NewTime, deps.Location)
			if err != nil {
				return &Output{Result: badFormatResult}, nil
			}
			duration := ev.End.Sub(ev.Start)
			if duration <= 0 {
				duration = defaultDuration
			}

			ev.Start = newStart
			ev.End = newStart.Add(duration)
			if err := deps.Calendar.UpdateEvent(ctx, *ev); err != nil {
				logx.Error().Err(err).Str("event_id", in.EventID).Msg("calendar update failed")
				return &Output{Result: fmt.Sprintf("Failed to update appointment: the calendar service is unavailable (%v).", err)}, nil
			}

			if err := deps.Store.UpdateTimeByEventID(ctx, in.EventID, in.NewDate, in.NewTime); err != nil {
				logx.Error().Err(err).Str("event_id", in.EventID).Msg("appointment update failed")
				return &Output{Result: fmt.Sprintf("Failed to update stored appointment details: %v.", err)}, nil
			}

			return &Output{Result: fmt.Sprintf(
				"Appointment with event ID %s successfully updated to %s at %s.",
				in.EventID, in.NewDate, in.NewTime)}, nil
		},
	)
}

// ===================================
// Cancel Appointment Tool
// ===================================

type CancelAppointmentInput struct {
	EventID string `json:"event_id"`
}

func createCancelAppointmentTool(deps Deps) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCancelAppointment,
			Desc: "Cancel an existing appointment identified by its event ID: removes the calendar event and deletes the stored record.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"event_id": {
					Type:     "string",
					Desc:     "Calendar event ID returned when the appointment was booked.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *CancelAppointmentInput) (*Output, error) {
			if _, ok := ThreadIDFromContext(ctx); !ok {
				return &Output{Result: noThreadResult}, nil
			}

			if _, err := deps.Store.GetByEventID(ctx, in.EventID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return &Output{Result: fmt.Sprintf(notFoundTemplate, in.EventID)}, nil
				}
				logx.Error().Err(err).Str("event_id", in.EventID).Msg("appointment lookup failed")
				return &Output{Result: fmt.Sprintf("Failed to cancel appointment: %v.", err)}, nil
			}

			if err := deps.Calendar.DeleteEvent(ctx, in.EventID); err != nil && !errors.Is(err, calendar.ErrEventNotFound) {
				logx.Error().Err(err).Str("event_id", in.EventID).Msg("calendar delete failed")
				return &Output{Result: fmt.Sprintf("Failed to cancel appointment: the calendar service is unavailable (%v).", err)}, nil
			}

			if err := deps.Store.DeleteByEventID(ctx, in.EventID); err != nil && !errors.Is(err, store.ErrNotFound) {
				logx.Error().Err(err).Str("event_id", in.EventID).Msg("appointment delete failed")
				return &Output{Result: fmt.Sprintf("Failed to remove stored appointment details: %v.", err)}, nil
			}

			return &Output{Result: fmt.Sprintf("Appointment with event ID %s successfully cancelled.", in.EventID)}, nil
		},
	)
}
