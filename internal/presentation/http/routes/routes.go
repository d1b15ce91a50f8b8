package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sangkips/admin-console/internal/application/service"
	"github.com/sangkips/admin-console/internal/config"
	"github.com/sangkips/admin-console/internal/presentation/http/handler"
	"github.com/sangkips/admin-console/internal/presentation/http/middleware"
	"github.com/sangkips/admin-console/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Session *handler.SessionHandler
	Catalog *handler.CatalogHandler
	Invoice *handler.InvoiceHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg      *config.Config
	Logger   *zap.Logger
	Tokens   *utils.SessionTokenManager
	Sessions *service.SessionService
	Gatherer prometheus.Gatherer
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) (*gin.Engine, *middleware.SessionRateLimiter) {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	rateLimiter := middleware.NewSessionRateLimiter(
		middleware.RateLimiterConfigFrom(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"service":    deps.Cfg.App.Name,
			"sessions":   deps.Sessions.Count(),
			"rate_limit": rateLimiter.Stats(),
		})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	console := router.Group("/api/v1/console")
	{
		// Mounting a session is the only call without a session token
		console.POST("/sessions", rateLimiter.Middleware(), h.Session.Create)

		// The first limiter pass is keyed by client IP and also covers rejected
		// tokens; the second one is per session.
		secureCookie := deps.Cfg.App.Env == "production"
		protected := console.Group("")
		protected.Use(rateLimiter.Middleware())
		protected.Use(middleware.SessionMiddleware(deps.Tokens, deps.Sessions, secureCookie, deps.Logger))
		protected.Use(rateLimiter.Middleware())

		registerSessionRoutes(protected, h)
		registerCatalogRoutes(protected, h)
		registerInvoiceRoutes(protected, h)
	}

	return router, rateLimiter
}

func registerSessionRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/session", h.Session.Get)
	rg.DELETE("/session", h.Session.Delete)
}

func registerCatalogRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/clients", h.Catalog.ListClients)
	rg.GET("/products", h.Catalog.ListProducts)
	rg.GET("/catalog/status", h.Catalog.Status)
}

func registerInvoiceRoutes(rg *gin.RouterGroup, h *Handlers) {
	invoice := rg.Group("/invoice")
	{
		invoice.PUT("/client", h.Invoice.SelectClient)
		invoice.PUT("/gst", h.Invoice.SetTaxRate)
		invoice.GET("/services", h.Invoice.ListServices)
		invoice.POST("/services", h.Invoice.AppendService)
		invoice.PATCH("/services/:index", h.Invoice.UpdateService)
		invoice.DELETE("/services/:index", h.Invoice.RemoveService)
		invoice.POST("/submit", h.Invoice.Submit)
	}
}
