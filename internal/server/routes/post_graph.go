package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/common"
	"github.com/caseboard/backend/pkg/logger"
)

// SetGraphHandler replaces the whole graph, e.g. when loading a shared
// or previously exported case.
func SetGraphHandler(c echo.Context) error {
	type setGraphBody struct {
		Entities      []common.Entity       `json:"entities"`
		Relationships []common.Relationship `json:"relationships"`
		Metadata      common.Metadata       `json:"metadata"`
	}

	type setGraphResponse struct {
		Message       string `json:"message"`
		Entities      int    `json:"entities"`
		Relationships int    `json:"relationships"`
	}

	data := new(setGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, setGraphResponse{
			Message: "Invalid request body",
		})
	}

	st := c.(*middleware.AppContext).App.Store
	g := common.Graph{
		Entities:      data.Entities,
		Relationships: data.Relationships,
		Metadata:      data.Metadata,
	}
	if err := st.SetGraph(c.Request().Context(), g); err != nil {
		logger.Error("Failed to set graph", "err", err)
		return c.JSON(http.StatusInternalServerError, setGraphResponse{
			Message: "Internal server error",
		})
	}

	metric.GraphMutations.WithLabelValues("set_graph").Inc()
	return c.JSON(http.StatusOK, setGraphResponse{
		Message:       "Graph replaced successfully",
		Entities:      len(data.Entities),
		Relationships: len(data.Relationships),
	})
}

// EditMetadataHandler updates the graph title, description, and context.
func EditMetadataHandler(c echo.Context) error {
	type editMetadataBody struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Context     string `json:"context"`
	}

	type editMetadataResponse struct {
		Message string `json:"message"`
	}

	data := new(editMetadataBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editMetadataResponse{
			Message: "Invalid request body",
		})
	}

	st := c.(*middleware.AppContext).App.Store
	err := st.SetMetadata(c.Request().Context(), common.Metadata{
		Title:       data.Title,
		Description: data.Description,
		Context:     data.Context,
	})
	if err != nil {
		logger.Error("Failed to set metadata", "err", err)
		return c.JSON(http.StatusInternalServerError, editMetadataResponse{
			Message: "Internal server error",
		})
	}

	metric.GraphMutations.WithLabelValues("set_metadata").Inc()
	return c.JSON(http.StatusOK, editMetadataResponse{
		Message: "Metadata updated successfully",
	})
}

// SelectEntityHandler sets or clears the selected entity.
func SelectEntityHandler(c echo.Context) error {
	type selectBody struct {
		ID string `json:"id"`
	}

	type selectResponse struct {
		Message string `json:"message"`
	}

	data := new(selectBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, selectResponse{
			Message: "Invalid request body",
		})
	}

	st := c.(*middleware.AppContext).App.Store
	if err := st.Select(c.Request().Context(), data.ID); err != nil {
		logger.Error("Failed to set selection", "err", err)
		return c.JSON(http.StatusInternalServerError, selectResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, selectResponse{
		Message: "Selection updated",
	})
}
