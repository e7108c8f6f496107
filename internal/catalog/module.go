// Package catalog provides the vehicle inventory bounded context module.
package catalog

import (
	"carbot_backend/internal/catalog/handler"
	"carbot_backend/internal/catalog/repository"
	"carbot_backend/internal/catalog/service"
	apphttp "carbot_backend/internal/http"
	"carbot_backend/platform/logger"
	"carbot_backend/platform/validator"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule loads the inventory from the source and initializes the module.
func NewModule(source repository.Source, val *validator.Validator, log *logger.Logger) (*Module, error) {
	repo, err := repository.New(source)
	if err != nil {
		return nil, err
	}
	log.Info("catalog index built", "vehicles", repo.Count())

	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/catalog")
	group.GET("/vehicles", m.handler.SearchVehicles)
	group.GET("/vehicles/:stockId", m.handler.GetVehicle)
	group.GET("/makes", m.handler.ListMakes)
	group.GET("/models", m.handler.ListModels)
}
