package webhook

import (
	"carbot_backend/internal/events"
	apphttp "carbot_backend/internal/http"
	"carbot_backend/platform/config"
	"carbot_backend/platform/httpkit"
	"carbot_backend/platform/logger"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	token   string
}

// NewModule wires the webhook service and handler.
func NewModule(orchestrator TurnProcessor, sender Sender, cfg config.WebhookConfig, eventBus events.Bus, log *logger.Logger) *Module {
	svc := NewService(orchestrator, sender, cfg.IsWebhookAsync(), eventBus, log)
	return &Module{
		handler: NewHandler(svc),
		token:   cfg.GetWebhookToken(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the webhook endpoint. The shared token guard is a
// no-op when no token is configured.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook")
	group.Use(httpkit.SharedTokenRequired(m.token))
	group.POST("/whatsapp", m.handler.HandleWhatsApp)
}

var _ apphttp.Module = (*Module)(nil)
