package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	analysisHandler *Analysis
	metricsHandler  http.Handler
	authMW          echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers. metricsHandler and authMW may be nil.
func NewRouter(cfg *config.Config, analysisHandler *Analysis, metricsHandler http.Handler, authMW echo.MiddlewareFunc) *Router {
	return &Router{
		cfg:             cfg,
		analysisHandler: analysisHandler,
		metricsHandler:  metricsHandler,
		authMW:          authMW,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	if rt.metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metricsHandler))
	}

	// API v1 group
	v1 := e.Group("/v1")
	if rt.authMW != nil {
		v1.Use(rt.authMW)
	}

	rt.setupAnalysisRoutes(v1)
}

// setupAnalysisRoutes configures analysis and batch run routes
func (rt *Router) setupAnalysisRoutes(g *echo.Group) {
	if rt.analysisHandler != nil {
		g.POST("/analyses", rt.analysisHandler.Analyze)
		g.POST("/runs", rt.analysisHandler.TriggerRun)
	} else {
		g.POST("/analyses", rt.notImplemented)
		g.POST("/runs", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Environment,
	})
}
