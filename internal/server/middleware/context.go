package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/pkg/ingest"
	"github.com/caseboard/backend/pkg/store"
)

// App bundles the long-lived services every handler needs.
type App struct {
	Store    *store.Store
	Sessions *ingest.Manager
}

// AppContext is the echo context handed to route handlers.
type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(st *store.Store, sessions *ingest.Manager) echo.MiddlewareFunc {
	app := &App{
		Store:    st,
		Sessions: sessions,
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app})
		}
	}
}
