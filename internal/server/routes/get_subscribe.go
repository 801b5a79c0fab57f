package routes

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/logger"
)

const (
	subscribeBuffer = 16
	writeTimeout    = 10 * time.Second
)

// SubscribeHandler upgrades the request to a WebSocket and pushes a full
// graph snapshot after every mutation. Rendering and persistence clients
// hang off this endpoint; they only ever read.
func SubscribeHandler(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	updates, cancel, err := st.Subscribe(ctx, subscribeBuffer)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "subscription failed")
		return nil
	}
	defer cancel()

	// Send the current state up front so the client has something to
	// render before the first mutation.
	snapshot, err := st.Snapshot(ctx)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "snapshot failed")
		return nil
	}
	if err := writeSnapshot(ctx, conn, snapshot); err != nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return nil
		case g, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "store closed")
				return nil
			}
			if err := writeSnapshot(ctx, conn, g); err != nil {
				logger.Debug("[WS] Subscriber write failed", "err", err)
				return nil
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, v)
}
