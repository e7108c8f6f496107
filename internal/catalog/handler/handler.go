package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carbot_backend/internal/catalog/service"
	"carbot_backend/internal/catalog/transport"
	"carbot_backend/platform/httpkit"
	"carbot_backend/platform/validator"
)

// Handler handles HTTP requests for the vehicle catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidStockID   = "invalid stock id"
)

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SearchVehicles filters the inventory.
// GET /api/v1/catalog/vehicles
func (h *Handler) SearchVehicles(c *gin.Context) {
	var req transport.SearchVehiclesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Search(service.SearchParams{
		Make:          req.Make,
		Model:         req.Model,
		Year:          req.Year,
		PriceMax:      req.PriceMax,
		KilometersMax: req.KmMax,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SearchVehiclesResponse{
		Vehicles:       result.Vehicles,
		Total:          len(result.Vehicles),
		FuzzyMatched:   result.FuzzyMatched,
		CorrectedMake:  result.CorrectedMake,
		CorrectedModel: result.CorrectedModel,
	})
}

// GetVehicle returns a single vehicle by stock ID.
// GET /api/v1/catalog/vehicles/:stockId
func (h *Handler) GetVehicle(c *gin.Context) {
	stockID, err := strconv.Atoi(c.Param("stockId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidStockID, nil)
		return
	}

	vehicle, err := h.svc.GetByStockID(stockID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, vehicle)
}

// ListMakes returns the distinct makes in the inventory.
// GET /api/v1/catalog/makes
func (h *Handler) ListMakes(c *gin.Context) {
	httpkit.OK(c, transport.MakesResponse{Makes: h.svc.ListMakes()})
}

// ListModels returns the distinct models, optionally narrowed to one make.
// GET /api/v1/catalog/models?make=
func (h *Handler) ListModels(c *gin.Context) {
	make := c.Query("make")
	httpkit.OK(c, transport.ModelsResponse{
		Make:   make,
		Models: h.svc.ListModels(make),
	})
}
