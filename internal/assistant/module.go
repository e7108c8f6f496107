// Package assistant provides the conversational assistant bounded context
// module: one message endpoint plus session management.
package assistant

import (
	"carbot_backend/internal/agent"
	"carbot_backend/internal/assistant/handler"
	apphttp "carbot_backend/internal/http"
	"carbot_backend/internal/session"
	"carbot_backend/platform/validator"
)

// Module implements http.Module for the assistant endpoints.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the assistant handler.
func NewModule(orchestrator *agent.Orchestrator, store session.Store, val *validator.Validator) *Module {
	return &Module{handler: handler.New(orchestrator, store, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "assistant"
}

// RegisterRoutes mounts assistant routes. The message endpoint carries the
// per-IP rate limit; session management does not.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/assistant")
	group.POST("/message", ctx.Limiter.RateLimit(), m.handler.PostMessage)
	group.GET("/sessions/:sessionId", m.handler.GetSession)
	group.DELETE("/sessions/:sessionId", m.handler.DeleteSession)
	group.POST("/sessions/cleanup", m.handler.CleanupSessions)
	group.DELETE("/sessions", m.handler.ClearSessions)
}
