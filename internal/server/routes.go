package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caseboard/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api")

	// Graph routes
	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.POST("/graph", routes.SetGraphHandler)
	apiRoutes.DELETE("/graph", routes.ClearGraphHandler)
	apiRoutes.PATCH("/graph/metadata", routes.EditMetadataHandler)
	apiRoutes.GET("/graph/stats", routes.GetStatsHandler)
	apiRoutes.POST("/graph/dedupe", routes.DedupeHandler)
	apiRoutes.POST("/graph/batch", routes.BatchHandler)

	// Entity routes
	apiRoutes.POST("/entities", routes.CreateEntityHandler)
	apiRoutes.POST("/entities/merge", routes.MergeEntityHandler)
	apiRoutes.DELETE("/entities/:id", routes.DeleteEntityHandler)

	// Relationship routes
	apiRoutes.POST("/relationships", routes.CreateRelationshipHandler)

	// Selection routes
	apiRoutes.GET("/selection", routes.GetSelectionHandler)
	apiRoutes.POST("/selection", routes.SelectEntityHandler)

	// Ingestion session routes
	apiRoutes.GET("/sessions", routes.GetSessionsHandler)
	apiRoutes.POST("/sessions", routes.StartSessionHandler)
	apiRoutes.DELETE("/sessions/:id", routes.CancelSessionHandler)

	// Snapshot push for rendering/persistence clients
	apiRoutes.GET("/subscribe", routes.SubscribeHandler)
}
