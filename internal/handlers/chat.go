// Package handlers implements the HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sunrise-assist/server/internal/assistant/model"
	errx "github.com/sunrise-assist/server/internal/core/error"
	"github.com/sunrise-assist/server/internal/models"
	httputil "github.com/sunrise-assist/server/pkg/httputil"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

// Responder runs one conversation turn on a thread.
type Responder interface {
	Respond(ctx context.Context, threadID, userText string) (string, error)
}

// ChatHandlers serves the conversational endpoints.
type ChatHandlers struct {
	assistant Responder
	threads   model.ThreadRepository
}

func NewChatHandlers(a Responder, threads model.ThreadRepository) *ChatHandlers {
	return &ChatHandlers{assistant: a, threads: threads}
}

// HandleChat runs one conversation turn. An omitted or unknown thread_id
// starts a fresh thread; the effective thread id is always echoed back.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request: 'message' is required")
		return
	}
	if req.Message == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request: 'message' is required")
		return
	}

	ctx := r.Context()

	threadID := req.ThreadID
	if threadID != "" {
		known, err := h.threads.Exists(ctx, threadID)
		if err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Msg("thread lookup failed")
			httputil.RespondError(w, errx.StatusOf(err), "An internal error occurred. Please try again later.")
			return
		}
		if !known {
			threadID = ""
		}
	}
	if threadID == "" {
		created, err := h.threads.Create(ctx)
		if err != nil {
			logx.Error().Err(err).Msg("thread creation failed")
			httputil.RespondError(w, errx.StatusOf(err), "An internal error occurred. Please try again later.")
			return
		}
		threadID = created
	}

	reply, err := h.assistant.Respond(ctx, threadID, req.Message)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("turn failed")
		httputil.RespondError(w, errx.StatusOf(err), "An internal error occurred. Please try again later.")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.ChatResponse{
		ThreadID: threadID,
		Response: reply,
	})
}

// HandleReset clears a thread's history while keeping its identifier valid,
// so the same thread_id can be reset again or chatted on afterwards.
func (h *ChatHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req models.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ThreadID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid thread_id")
		return
	}

	ctx := r.Context()
	known, err := h.threads.Exists(ctx, req.ThreadID)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", req.ThreadID).Msg("thread lookup failed")
		httputil.RespondError(w, errx.StatusOf(err), "An internal error occurred. Please try again later.")
		return
	}
	if !known {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid thread_id")
		return
	}

	if err := h.threads.Reset(ctx, req.ThreadID); err != nil {
		logx.Error().Err(err).Str("thread_id", req.ThreadID).Msg("thread reset failed")
		httputil.RespondError(w, errx.StatusOf(err), "An internal error occurred. Please try again later.")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Conversation reset successfully",
	})
}
