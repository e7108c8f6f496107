package financing

import (
	apphttp "carbot_backend/internal/http"
	"carbot_backend/platform/validator"
)

// Module is the financing bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the financing module.
func NewModule(val *validator.Validator) *Module {
	return &Module{handler: NewHandler(val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "financing"
}

// RegisterRoutes mounts financing routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/financing")
	group.POST("/quote", m.handler.QuoteVehicle)
	group.POST("/options", m.handler.QuoteOptions)
}
