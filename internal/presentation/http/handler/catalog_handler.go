package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/admin-console/internal/application/service"
	"github.com/sangkips/admin-console/internal/presentation/http/dto/request"
	"github.com/sangkips/admin-console/internal/presentation/http/dto/response"
	"github.com/sangkips/admin-console/pkg/pagination"
)

// CatalogHandler serves the client and product selection lists
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func bindFilter(c *gin.Context) (service.CatalogFilter, bool) {
	var filter request.CatalogFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return service.CatalogFilter{}, false
	}
	return service.CatalogFilter{
		Search: filter.Search,
		PaginationParams: pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
	}, true
}

// ListClients returns the session's client catalog
func (h *CatalogHandler) ListClients(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Clients retrieved", service.SearchClients(sess.Data, filter))
}

// ListProducts returns the session's product catalog
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Products retrieved", service.SearchProducts(sess.Data, filter))
}

// Status reports whether each catalog loaded
func (h *CatalogHandler) Status(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	response.OK(c, "Catalog status retrieved", sess.Data.Status())
}
