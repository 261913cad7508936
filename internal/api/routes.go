// routes.go - Route registration helpers
package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/export"
	"github.com/ironsheep/map-georef/internal/imaging"
	"github.com/ironsheep/map-georef/internal/jobs"
	"github.com/ironsheep/map-georef/internal/store"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Config   *config.Config
	Store    *store.Store
	Jobs     *jobs.Manager
	Exporter *export.Exporter
	Cache    *imaging.ImageCache
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Maps   MapHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version),
		Maps:   NewMapHandler(deps),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/health", handlers.Health.HandleHealth)

	maps := e.Group("/api/maps")
	maps.POST("", handlers.Maps.HandleUpload)
	maps.GET("", handlers.Maps.HandleList)
	maps.DELETE("/:id", handlers.Maps.HandleDelete)
	maps.POST("/:id/process", handlers.Maps.HandleProcess)
	maps.GET("/:id/status", handlers.Maps.HandleStatus)
	maps.GET("/:id/result", handlers.Maps.HandleResult)
	maps.GET("/:id/result/msgpack", handlers.Maps.HandleResultMsgpack)
	maps.GET("/:id/formats", handlers.Maps.HandleFormats)
	maps.POST("/:id/export", handlers.Maps.HandleExport)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") || path == "/health"
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}
}

// New builds a configured Echo instance serving the map API.
func New(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	SetupMiddleware(e, deps.Config)
	RegisterRoutes(e, NewHandlers(deps))
	return e
}
