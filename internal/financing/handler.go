package financing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carbot_backend/platform/httpkit"
	"carbot_backend/platform/validator"
)

// Handler handles HTTP requests for financing quotes.
type Handler struct {
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// NewHandler creates a financing handler.
func NewHandler(val *validator.Validator) *Handler {
	return &Handler{val: val}
}

// QuoteVehicle computes one financing quote.
// POST /api/v1/financing/quote
func (h *Handler) QuoteVehicle(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rate := DefaultAnnualRatePercent
	if req.AnnualRatePercent != nil {
		rate = *req.AnnualRatePercent
	}
	downPercent := DefaultDownPaymentPercent
	if req.DownPaymentPercent != nil {
		downPercent = *req.DownPaymentPercent
	}

	quote, err := Compute(req.Price, rate, req.TermMonths, downPercent)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, quote)
}

// QuoteOptions computes a quote per approved term.
// POST /api/v1/financing/options
func (h *Handler) QuoteOptions(c *gin.Context) {
	var req OptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	downPercent := DefaultDownPaymentPercent
	if req.DownPaymentPercent != nil {
		downPercent = *req.DownPaymentPercent
	}

	options, err := Options(req.Price, downPercent)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, OptionsResponse{Options: options})
}
