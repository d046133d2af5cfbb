// Package webchat provides a WebSocket adapter for the clarifying
// conversation, so a chat UI can drive a session turn by turn instead of
// polling the REST endpoints.
package webchat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/acutecare/triage-assistant/internal/triage"
	"github.com/acutecare/triage-assistant/pkg/logging"
)

// SessionService is the slice of the triage service the adapter needs.
type SessionService interface {
	SubmitAnswer(ctx context.Context, sessionID, text string) (triage.AnswerOutcome, error)
}

// Handler manages web chat connections for triage sessions.
type Handler struct {
	service SessionService
	logger  *logging.Logger
}

// InboundMessage is what the chat widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type          string `json:"type"` // "message", "complete", "session", "error", "pong"
	Role          string `json:"role,omitempty"`
	Text          string `json:"text,omitempty"`
	QuestionIndex int    `json:"question_index,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// NewHandler creates a web chat handler.
func NewHandler(service SessionService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleWebSocket upgrades to WebSocket and relays conversation turns. The
// session must already exist: intake is always submitted over REST first.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "missing session parameter"})
		return
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})
	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" {
			continue
		}

		h.processMessage(r.Context(), conn, sessionID, msg.Text)
	}
}

func (h *Handler) processMessage(ctx context.Context, conn *websocket.Conn, sessionID, text string) {
	outcome, err := h.service.SubmitAnswer(ctx, sessionID, text)
	switch {
	case errors.Is(err, triage.ErrBlankAnswer):
		// No state change; the widget re-prompts.
		return
	case errors.Is(err, triage.ErrSessionNotFound):
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type: "error",
			Text: "Session expired. Please start a new assessment.",
		})
		return
	case err != nil:
		h.logger.Error("webchat: failed to process answer", "error", err, "session_id", sessionID)
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type: "error",
			Text: "Sorry, something went wrong. Please try again.",
		})
		return
	}

	if outcome.Reply != "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:          "message",
			Role:          triage.SpeakerAssistant,
			Text:          outcome.Reply,
			QuestionIndex: outcome.QuestionIndex,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		})
	}
	if outcome.Complete {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "complete", SessionID: sessionID})
	}
}
