package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/admin-console/internal/presentation/http/dto/request"
	"github.com/sangkips/admin-console/internal/presentation/http/dto/response"
	"github.com/sangkips/admin-console/pkg/slipsink"
)

// InvoiceHandler handles invoice composer HTTP requests
type InvoiceHandler struct {
	location *time.Location
}

// NewInvoiceHandler creates a new invoice handler. Calendar dates without a
// time are read in location.
func NewInvoiceHandler(location *time.Location) *InvoiceHandler {
	if location == nil {
		location = time.UTC
	}
	return &InvoiceHandler{location: location}
}

// SelectClient selects the invoice client
func (h *InvoiceHandler) SelectClient(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.SelectClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	client, found := sess.Composer.SelectClient(req.ID)
	if !found {
		response.OK(c, "Client selection cleared", gin.H{"client": nil})
		return
	}
	response.OK(c, "Client selected", gin.H{"client": client})
}

// SetTaxRate stores the GST text; it is checked on submit
func (h *InvoiceHandler) SetTaxRate(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.SetTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	sess.Composer.SetTaxRate(*req.GST)
	response.OK(c, "GST updated", gin.H{"gst": *req.GST})
}

// ListServices returns the service lines in order
func (h *InvoiceHandler) ListServices(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	response.OK(c, "Services retrieved", sess.Composer.Services())
}

// AppendService adds an empty service line
func (h *InvoiceHandler) AppendService(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	response.Created(c, "Service added", sess.Composer.AppendService())
}

// UpdateService changes one field of the service line at :index
func (h *InvoiceHandler) UpdateService(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	index, ok := serviceIndex(c)
	if !ok {
		return
	}

	var req request.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	update, err := req.ToUpdate(h.location)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.OK(c, "Service updated", sess.Composer.UpdateService(index, update))
}

// RemoveService removes the service line at :index
func (h *InvoiceHandler) RemoveService(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	index, ok := serviceIndex(c)
	if !ok {
		return
	}
	response.OK(c, "Service removed", sess.Composer.RemoveService(index))
}

// Submit creates the invoice and streams invoice_slip.pdf back as a download
func (h *InvoiceHandler) Submit(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	_, err := sess.Composer.Submit(c.Request.Context(), slipsink.NewResponseSink(c.Writer))
	if err != nil {
		if c.Writer.Written() {
			// the download already started; only the log can carry the failure
			_ = c.Error(err)
			return
		}
		response.Error(c, err)
	}
}
