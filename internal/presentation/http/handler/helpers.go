package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/admin-console/internal/application/service"
	"github.com/sangkips/admin-console/internal/presentation/http/dto/response"
	"github.com/sangkips/admin-console/internal/presentation/http/middleware"
)

// currentSession returns the request's console session, writing a 401 when absent
func currentSession(c *gin.Context) (*service.Session, bool) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return sess, true
}

// serviceIndex parses the :index path parameter. Range is not checked here:
// out-of-range positions are a no-op on the line items.
func serviceIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid service index")
		return 0, false
	}
	return index, true
}
