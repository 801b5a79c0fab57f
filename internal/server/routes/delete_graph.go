package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/logger"
)

// ClearGraphHandler removes every entity and relationship while keeping
// the case metadata.
func ClearGraphHandler(c echo.Context) error {
	type clearGraphResponse struct {
		Message string `json:"message"`
	}

	st := c.(*middleware.AppContext).App.Store
	if err := st.Clear(c.Request().Context()); err != nil {
		logger.Error("Failed to clear graph", "err", err)
		return c.JSON(http.StatusInternalServerError, clearGraphResponse{
			Message: "Internal server error",
		})
	}

	metric.GraphMutations.WithLabelValues("clear").Inc()
	return c.JSON(http.StatusOK, clearGraphResponse{
		Message: "Graph cleared successfully",
	})
}
