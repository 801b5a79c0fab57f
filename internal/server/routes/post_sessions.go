package routes

import (
	"context"
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/ingest"
	"github.com/caseboard/backend/pkg/ingest/amqp"
	"github.com/caseboard/backend/pkg/ingest/ws"
	"github.com/caseboard/backend/pkg/logger"
)

// StartSessionHandler begins an ingestion session consuming facts from an
// external producer, over either a RabbitMQ queue or a WebSocket endpoint.
func StartSessionHandler(c echo.Context) error {
	type startSessionBody struct {
		Transport string `json:"transport" validate:"required,oneof=amqp websocket"`
		Queue     string `json:"queue"`
		URL       string `json:"url"`
	}

	type startSessionResponse struct {
		Message string `json:"message"`
		ID      string `json:"id,omitempty"`
	}

	data := new(startSessionBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, startSessionResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, startSessionResponse{
			Message: "Invalid request body",
		})
	}

	var source ingest.EventSource
	var err error
	switch data.Transport {
	case "amqp":
		if data.Queue == "" {
			return c.JSON(http.StatusBadRequest, startSessionResponse{
				Message: "Queue name is required for amqp transport",
			})
		}
		source, err = amqp.Dial(data.Queue)
	case "websocket":
		if data.URL == "" {
			return c.JSON(http.StatusBadRequest, startSessionResponse{
				Message: "URL is required for websocket transport",
			})
		}
		source, err = ws.Dial(c.Request().Context(), data.URL)
	}
	if err != nil {
		logger.Error("Failed to connect to producer", "transport", data.Transport, "err", err)
		return c.JSON(http.StatusBadGateway, startSessionResponse{
			Message: "Failed to connect to producer",
		})
	}

	// The session must outlive this request, so it runs on its own
	// context; Manager.Shutdown tears it down on server exit.
	sessions := c.(*middleware.AppContext).App.Sessions
	id, err := sessions.Start(context.Background(), source, ingest.Callbacks{})
	if errors.Is(err, ingest.ErrTooManySessions) {
		source.Close()
		return c.JSON(http.StatusTooManyRequests, startSessionResponse{
			Message: "Too many active sessions",
		})
	}
	if err != nil {
		source.Close()
		logger.Error("Failed to start session", "err", err)
		return c.JSON(http.StatusInternalServerError, startSessionResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, startSessionResponse{
		Message: "Session started successfully",
		ID:      id,
	})
}
