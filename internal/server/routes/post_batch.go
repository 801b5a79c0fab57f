package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/common"
	"github.com/caseboard/backend/pkg/graph"
	"github.com/caseboard/backend/pkg/logger"
)

// BatchHandler integrates a whole extraction result at once: entities are
// matched and merged against the current graph, then relationships are
// resolved against the combined entity set.
func BatchHandler(c echo.Context) error {
	type batchRelationship struct {
		Source     string  `json:"source" validate:"required"`
		Target     string  `json:"target" validate:"required"`
		Type       string  `json:"type"`
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}

	type batchBody struct {
		Entities      []entityBody        `json:"entities"`
		Relationships []batchRelationship `json:"relationships"`
	}

	type batchResponse struct {
		Message              string `json:"message"`
		EntitiesAdded        int    `json:"entities_added"`
		EntitiesMerged       int    `json:"entities_merged"`
		EntitiesDropped      int    `json:"entities_dropped"`
		RelationshipsAdded   int    `json:"relationships_added"`
		RelationshipsMerged  int    `json:"relationships_merged"`
		RelationshipsDropped int    `json:"relationships_dropped"`
	}

	data := new(batchBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, batchResponse{
			Message: "Invalid request body",
		})
	}

	entities := make([]common.Entity, 0, len(data.Entities))
	for _, e := range data.Entities {
		entities = append(entities, e.toEntity())
	}
	relationships := make([]graph.RawRelationship, 0, len(data.Relationships))
	for _, r := range data.Relationships {
		relationships = append(relationships, graph.RawRelationship{
			Source:     r.Source,
			Target:     r.Target,
			Type:       r.Type,
			Label:      r.Label,
			Confidence: r.Confidence,
		})
	}

	st := c.(*middleware.AppContext).App.Store
	result, err := st.AddBatch(c.Request().Context(), entities, relationships)
	if err != nil {
		logger.Error("Failed to apply batch", "err", err)
		return c.JSON(http.StatusInternalServerError, batchResponse{
			Message: "Internal server error",
		})
	}

	metric.GraphMutations.WithLabelValues("batch").Inc()
	return c.JSON(http.StatusOK, batchResponse{
		Message:              "Batch applied successfully",
		EntitiesAdded:        result.EntitiesAdded,
		EntitiesMerged:       result.EntitiesMerged,
		EntitiesDropped:      result.EntitiesDropped,
		RelationshipsAdded:   result.RelationshipsAdded,
		RelationshipsMerged:  result.RelationshipsMerged,
		RelationshipsDropped: result.RelationshipsDropped,
	})
}
