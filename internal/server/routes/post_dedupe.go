package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/logger"
)

// DedupeHandler collapses heuristically equivalent entities across the
// whole graph and rewrites relationships onto the survivors.
func DedupeHandler(c echo.Context) error {
	type dedupeResponse struct {
		Message             string `json:"message"`
		EntitiesBefore      int    `json:"entities_before"`
		EntitiesAfter       int    `json:"entities_after"`
		RelationshipsBefore int    `json:"relationships_before"`
		RelationshipsAfter  int    `json:"relationships_after"`
	}

	st := c.(*middleware.AppContext).App.Store
	result, err := st.Deduplicate(c.Request().Context())
	if err != nil {
		logger.Error("Failed to deduplicate graph", "err", err)
		return c.JSON(http.StatusInternalServerError, dedupeResponse{
			Message: "Internal server error",
		})
	}

	metric.GraphMutations.WithLabelValues("dedupe").Inc()
	return c.JSON(http.StatusOK, dedupeResponse{
		Message:             "Graph deduplicated successfully",
		EntitiesBefore:      result.EntitiesBefore,
		EntitiesAfter:       result.EntitiesAfter,
		RelationshipsBefore: result.RelationshipsBefore,
		RelationshipsAfter:  result.RelationshipsAfter,
	})
}
