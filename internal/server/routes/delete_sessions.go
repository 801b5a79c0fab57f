package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/ingest"
)

// CancelSessionHandler stops an ingestion session. Facts the session
// already applied stay in the graph.
func CancelSessionHandler(c echo.Context) error {
	type cancelSessionParams struct {
		ID string `param:"id" validate:"required"`
	}

	type cancelSessionResponse struct {
		Message string `json:"message"`
	}

	params := new(cancelSessionParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, cancelSessionResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, cancelSessionResponse{
			Message: "Invalid request body",
		})
	}

	sessions := c.(*middleware.AppContext).App.Sessions
	err := sessions.Cancel(params.ID)
	if errors.Is(err, ingest.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, cancelSessionResponse{
			Message: "Session not found",
		})
	}

	return c.JSON(http.StatusOK, cancelSessionResponse{
		Message: "Session cancelled",
	})
}

// GetSessionsHandler lists the IDs of running ingestion sessions.
func GetSessionsHandler(c echo.Context) error {
	type getSessionsResponse struct {
		Message  string   `json:"message"`
		Sessions []string `json:"sessions"`
	}

	sessions := c.(*middleware.AppContext).App.Sessions
	return c.JSON(http.StatusOK, getSessionsResponse{
		Message:  "OK",
		Sessions: sessions.Active(),
	})
}
