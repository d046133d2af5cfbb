// Package handlers exposes the triage session pipeline over HTTP. The
// handlers are thin: validation, conversation and classification semantics
// all live in internal/triage.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/acutecare/triage-assistant/internal/export"
	"github.com/acutecare/triage-assistant/internal/triage"
	"github.com/acutecare/triage-assistant/pkg/logging"
)

// SessionHandler wires HTTP requests to the triage session service.
type SessionHandler struct {
	service *triage.Service
	logger  *logging.Logger
	now     func() time.Time
}

// NewSessionHandler creates a triage session handler.
func NewSessionHandler(service *triage.Service, logger *logging.Logger) *SessionHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionHandler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// StartSession handles POST /api/sessions.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var sub triage.IntakeSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.logger.Error("failed to decode intake submission", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, violations, err := h.service.StartSession(r.Context(), sub)
	if err != nil {
		h.logger.Error("failed to start session", "error", err)
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}
	if len(violations) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": violations,
		})
		return
	}

	resp := map[string]any{
		"session_id": outcome.SessionID,
		"phase":      outcome.Phase,
	}
	if outcome.Greeting != "" {
		resp["greeting"] = outcome.Greeting
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// SubmitAnswer handles POST /api/sessions/{sessionID}/messages.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.service.SubmitAnswer(r.Context(), sessionID, req.Text)
	switch {
	case errors.Is(err, triage.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	case errors.Is(err, triage.ErrBlankAnswer):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": map[string]string{"text": "Please type a response"},
		})
		return
	case err != nil:
		h.logger.Error("failed to process answer", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to process answer", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"reply":          outcome.Reply,
		"question_index": outcome.QuestionIndex,
		"complete":       outcome.Complete,
	})
}

// Result handles GET /api/sessions/{sessionID}/result.
func (h *SessionHandler) Result(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, err := h.service.Result(r.Context(), sessionID)
	switch {
	case errors.Is(err, triage.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	case errors.Is(err, triage.ErrResultNotReady):
		http.Error(w, "Assessment not complete", http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("failed to load result", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to load result", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"session_id":       snap.SessionID,
		"intake":           snap.Intake,
		"result":           snap.Result,
		"immediate_access": snap.Intake.ImmediateAccess,
		"fallback":         snap.Result.IsFallback(),
	})
}

// Export handles GET /api/sessions/{sessionID}/export. The summary is a
// plain-text attachment reproducing every intake and result field.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, err := h.service.Result(r.Context(), sessionID)
	switch {
	case errors.Is(err, triage.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	case errors.Is(err, triage.ErrResultNotReady):
		http.Error(w, "Assessment not complete", http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("failed to export session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to export session", http.StatusInternalServerError)
		return
	}

	generatedAt := h.now()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(snap.Intake, generatedAt)))
	_, _ = w.Write([]byte(export.Summary(snap, generatedAt)))
}

// EndSession handles DELETE /api/sessions/{sessionID}.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.service.EndSession(r.Context(), sessionID); err != nil {
		h.logger.Error("failed to end session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to end session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (h *SessionHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
