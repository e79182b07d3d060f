package intake

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	intakeService "github.com/studyloop/intake/internal/service/intake"
	"github.com/studyloop/intake/pkg/utils"
)

// Handler exposes the intake engine over HTTP.
type Handler struct {
	svc    *intakeService.Service
	logger *zap.Logger
}

// New creates the intake handler.
func New(svc *intakeService.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes attaches the intake endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/session/{sessionID}", h.handleGetSession)
	r.Get("/sessions", h.handleListSessions)
	r.Delete("/session/{sessionID}", h.handleDeleteSession)
}

type chatRequest struct {
	SessionID      string `json:"session_id"`
	Message        string `json:"message"`
	IsFirstMessage bool   `json:"is_first_message"`
}

type chatResponse struct {
	Question   string `json:"question"`
	IsComplete bool   `json:"is_complete"`
	Progress   int    `json:"progress"`
	SessionID  string `json:"session_id"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Callers that don't manage ids get one minted for them; the response
	// echoes it either way.
	if payload.SessionID == "" {
		payload.SessionID = uuid.NewString()
	}

	result, err := h.svc.HandleTurn(r.Context(), intakeService.TurnRequest{
		SessionID:    payload.SessionID,
		Message:      payload.Message,
		FirstMessage: payload.IsFirstMessage,
	})
	if err != nil {
		h.logger.Error("turn failed on storage",
			zap.String("session_id", payload.SessionID),
			zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "session storage unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Question:   result.Question,
		IsComplete: result.Complete,
		Progress:   result.Progress,
		SessionID:  payload.SessionID,
	})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.svc.GetSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("session fetch failed", zap.String("session_id", sessionID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "session storage unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.ListSessions(r.Context())
	if err != nil {
		h.logger.Error("session listing failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "session storage unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.svc.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error("session delete failed", zap.String("session_id", sessionID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "session storage unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}
