package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/logger"
	"github.com/caseboard/backend/pkg/store"
)

// DeleteEntityHandler removes an entity and every relationship touching it.
func DeleteEntityHandler(c echo.Context) error {
	type deleteEntityParams struct {
		ID string `param:"id" validate:"required"`
	}

	type deleteEntityResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteEntityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteEntityResponse{
			Message: "Invalid request body",
		})
	}

	st := c.(*middleware.AppContext).App.Store
	err := st.DeleteEntity(c.Request().Context(), params.ID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, deleteEntityResponse{
			Message: "Entity not found",
		})
	}
	if err != nil {
		logger.Error("Failed to delete entity", "id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteEntityResponse{
			Message: "Internal server error",
		})
	}

	metric.GraphMutations.WithLabelValues("delete_entity").Inc()
	return c.JSON(http.StatusOK, deleteEntityResponse{
		Message: "Entity deleted successfully",
	})
}
