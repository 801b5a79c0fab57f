package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/common"
	"github.com/caseboard/backend/pkg/logger"
)

// GetGraphHandler returns the current graph snapshot.
func GetGraphHandler(c echo.Context) error {
	type getGraphResponse struct {
		Message string        `json:"message"`
		Graph   *common.Graph `json:"graph,omitempty"`
	}

	st := c.(*middleware.AppContext).App.Store
	g, err := st.Snapshot(c.Request().Context())
	if err != nil {
		logger.Error("Failed to read graph snapshot", "err", err)
		return c.JSON(http.StatusInternalServerError, getGraphResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getGraphResponse{
		Message: "OK",
		Graph:   &g,
	})
}

// GetStatsHandler returns entity, relationship, and session counts.
func GetStatsHandler(c echo.Context) error {
	type getStatsResponse struct {
		Message        string `json:"message"`
		Entities       int    `json:"entities"`
		Relationships  int    `json:"relationships"`
		ActiveSessions int    `json:"active_sessions"`
	}

	st := c.(*middleware.AppContext).App.Store
	stats, err := st.Stats(c.Request().Context())
	if err != nil {
		logger.Error("Failed to read graph stats", "err", err)
		return c.JSON(http.StatusInternalServerError, getStatsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getStatsResponse{
		Message:        "OK",
		Entities:       stats.Entities,
		Relationships:  stats.Relationships,
		ActiveSessions: stats.ActiveSessions,
	})
}

// GetSelectionHandler returns the currently selected entity ID, if any.
func GetSelectionHandler(c echo.Context) error {
	type getSelectionResponse struct {
		Message  string `json:"message"`
		Selected string `json:"selected,omitempty"`
	}

	st := c.(*middleware.AppContext).App.Store
	selected, err := st.Selected(c.Request().Context())
	if err != nil {
		logger.Error("Failed to read selection", "err", err)
		return c.JSON(http.StatusInternalServerError, getSelectionResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getSelectionResponse{
		Message:  "OK",
		Selected: selected,
	})
}
