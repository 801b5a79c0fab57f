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
	"github.com/caseboard/backend/pkg/store"
)

// CreateRelationshipHandler connects two entities. Source and target may
// be entity IDs or plain names; self-loops and duplicates are reported
// back instead of being stored.
func CreateRelationshipHandler(c echo.Context) error {
	type createRelationshipBody struct {
		Source     string  `json:"source" validate:"required"`
		Target     string  `json:"target" validate:"required"`
		Type       string  `json:"type"`
		Label      string  `json:"label"`
		Status     string  `json:"status"`
		Confidence float64 `json:"confidence"`
	}

	type createRelationshipResponse struct {
		Message string `json:"message"`
		Outcome string `json:"outcome"`
	}

	data := new(createRelationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}

	st := c.(*middleware.AppContext).App.Store
	outcome, err := st.AddRelationship(c.Request().Context(), graph.RawRelationship{
		Source:     data.Source,
		Target:     data.Target,
		Type:       data.Type,
		Label:      data.Label,
		Status:     common.RelationshipStatus(data.Status),
		Confidence: data.Confidence,
	}, nil)
	if err != nil {
		logger.Error("Failed to add relationship", "err", err)
		return c.JSON(http.StatusInternalServerError, createRelationshipResponse{
			Message: "Internal server error",
		})
	}

	switch outcome {
	case store.RelationshipAdded:
		metric.GraphMutations.WithLabelValues("add_relationship").Inc()
		return c.JSON(http.StatusOK, createRelationshipResponse{
			Message: "Relationship created successfully",
			Outcome: outcome.String(),
		})
	case store.RelationshipUnresolved:
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Source or target could not be resolved",
			Outcome: outcome.String(),
		})
	default:
		// Self-loops and duplicates are normalized away, not errors.
		return c.JSON(http.StatusOK, createRelationshipResponse{
			Message: "Relationship not stored",
			Outcome: outcome.String(),
		})
	}
}
