package handlers

import (
	"net/http"

	errx "github.com/sunrise-assist/server/internal/core/error"
	"github.com/sunrise-assist/server/internal/models"
	"github.com/sunrise-assist/server/internal/store"
	httputil "github.com/sunrise-assist/server/pkg/httputil"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

// AppointmentHandlers serves the administrative appointment endpoints.
type AppointmentHandlers struct {
	store store.AppointmentStore
}

func NewAppointmentHandlers(s store.AppointmentStore) *AppointmentHandlers {
	return &AppointmentHandlers{store: s}
}

// HandleList returns every stored appointment ordered by date then time.
func (h *AppointmentHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.store.ListOrdered(r.Context())
	if err != nil {
		logx.Error().Err(err).Msg("appointment listing failed")
		httputil.RespondError(w, errx.StatusOf(errx.WrapStore(err)), "An internal error occurred. Please try again later.")
		return
	}
	if appointments == nil {
		appointments = []store.Appointment{}
	}
	httputil.RespondJSON(w, http.StatusOK, models.AppointmentsResponse{Appointments: appointments})
}

// HandleClear deletes every stored appointment. Calendar events are left
// untouched; this clears the local records only.
func (h *AppointmentHandlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAll(r.Context()); err != nil {
		logx.Error().Err(err).Msg("appointment clearing failed")
		httputil.RespondError(w, errx.StatusOf(errx.WrapStore(err)), "An internal error occurred. Please try again later.")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "All appointments cleared",
	})
}
