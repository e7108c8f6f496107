package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carbot_backend/platform/httpkit"
)

// Handler handles the gateway's HTTP callbacks.
type Handler struct {
	svc *Service
}

// NewHandler creates the webhook handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// HandleWhatsApp receives one inbound message as a form post and answers
// with TwiML.
// POST /api/v1/webhook/whatsapp
func (h *Handler) HandleWhatsApp(c *gin.Context) {
	body := c.PostForm("Body")
	from := c.PostForm("From")
	if from == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing From field", nil)
		return
	}

	twiml, err := h.svc.HandleInbound(c.Request.Context(), from, body)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Type", "text/xml; charset=utf-8")
	c.String(http.StatusOK, twiml)
}
