package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/survey-assistant/internal/oracle"
	"github.com/wolfman30/survey-assistant/internal/session"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// Service is the engine surface exposed over transports.
type Service interface {
	ProcessTurn(ctx context.Context, sessionID, text string) (Reply, error)
	Snapshot(ctx context.Context, sessionID string) (*session.Session, error)
	Reset(ctx context.Context, sessionID string) error
	Greeting() string
}

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service Service
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// MessageRequest is the body of POST /api/chat/{sessionID}.
type MessageRequest struct {
	Content string `json:"content"`
}

// SessionView is the snapshot returned by GET /api/chat/{sessionID}.
type SessionView struct {
	*session.Session
	Surveying bool `json:"surveying"`
}

// NewSessionView wraps a snapshot for transport.
func NewSessionView(sess *session.Session) SessionView {
	return SessionView{Session: sess, Surveying: sess.Surveying()}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Message handles POST /api/chat/{sessionID}.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session id is required"})
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	reply, err := h.service.ProcessTurn(r.Context(), sessionID, req.Content)
	if err != nil {
		failure := ClassifyError(err)
		h.logger.Error("failed to process message", "session_id", sessionID, "error", err)
		h.writeJSON(w, failure.Status, errorResponse{Error: failure.Message})
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

// Get handles GET /api/chat/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.service.Snapshot(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
			return
		}
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load session"})
		return
	}
	h.writeJSON(w, http.StatusOK, NewSessionView(sess))
}

// Delete handles DELETE /api/chat/{sessionID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.service.Reset(r.Context(), sessionID); err != nil {
		failure := ClassifyError(err)
		h.logger.Error("failed to reset session", "session_id", sessionID, "error", err)
		h.writeJSON(w, failure.Status, errorResponse{Error: failure.Message})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TurnFailure is the client-safe view of a failed turn. Message never
// carries the underlying error text.
type TurnFailure struct {
	Status  int
	Code    string
	Message string
}

// ClassifyError maps a ProcessTurn or Reset error to what transports show.
func ClassifyError(err error) TurnFailure {
	switch {
	case errors.Is(err, oracle.ErrOracleUnavailable):
		return TurnFailure{Status: http.StatusServiceUnavailable, Code: "unavailable", Message: "assistant is temporarily unavailable, please try again"}
	case errors.Is(err, session.ErrSessionLocked):
		return TurnFailure{Status: http.StatusConflict, Code: "busy", Message: "a previous message is still being processed"}
	default:
		return TurnFailure{Status: http.StatusInternalServerError, Code: "internal", Message: "failed to process message"}
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
