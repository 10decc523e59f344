package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/sunrise-assist/server/internal/models"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

// RespondJSON writes a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The header is already written at this point, so only log.
		logx.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// RespondError writes a JSON error response with the given status code and message.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
