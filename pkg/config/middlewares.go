package config

import (
	"github.com/anonto42/future-media/backend/internal/metrics"
	appmw "github.com/anonto42/future-media/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware installs the global middleware chain. m may be nil to disable metrics.
func SetupMiddleware(e *echo.Echo, m *metrics.Metrics) {
	e.Use(appmw.RequestID())
	if m != nil {
		e.Use(appmw.Metrics(m))
	}
	e.Use(appmw.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
}
