// Package handler exposes the conversational assistant over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carbot_backend/internal/agent"
	"carbot_backend/internal/assistant/transport"
	"carbot_backend/internal/session"
	"carbot_backend/platform/httpkit"
	"carbot_backend/platform/validator"
)

const channelREST = "rest"

// Handler handles assistant and session management requests.
type Handler struct {
	orchestrator *agent.Orchestrator
	store        session.Store
	val          *validator.Validator
}

// New creates the assistant handler.
func New(orchestrator *agent.Orchestrator, store session.Store, val *validator.Validator) *Handler {
	return &Handler{orchestrator: orchestrator, store: store, val: val}
}

// PostMessage runs one conversation turn.
// POST /api/v1/assistant/message
func (h *Handler) PostMessage(c *gin.Context) {
	var req transport.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply, err := h.orchestrator.Process(c.Request.Context(), sessionID, req.Message, channelREST)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.MessageResponse{Reply: reply})
}

// GetSession returns a session's state.
// GET /api/v1/assistant/sessions/:sessionId
func (h *Handler) GetSession(c *gin.Context) {
	conv, err := h.store.Get(c.Request.Context(), c.Param("sessionId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{
		SessionID:         conv.SessionID,
		Turns:             len(conv.Turns),
		LastAction:        conv.LastAction,
		SelectedStockID:   conv.SelectedStockID,
		LastSearchResults: conv.LastSearchResults,
	})
}

// DeleteSession removes a session. Deleting a missing session still returns 204.
// DELETE /api/v1/assistant/sessions/:sessionId
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("sessionId")); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// CleanupSessions sweeps expired sessions on demand.
// POST /api/v1/assistant/sessions/cleanup
func (h *Handler) CleanupSessions(c *gin.Context) {
	removed, err := h.store.CleanupExpired(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.CleanupResponse{Removed: removed})
}

// ClearSessions removes every session and reports how many went away.
// DELETE /api/v1/assistant/sessions
func (h *Handler) ClearSessions(c *gin.Context) {
	removed, err := h.store.ClearAll(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.CleanupResponse{Removed: removed})
}
