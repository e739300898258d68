package handlers

import (
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ActivityHandler serves the caller's own activity log
type ActivityHandler struct {
	activity *services.ActivityService
}

func NewActivityHandler(activity *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("/activity", h.GetActivity, authed)
}

func (h *ActivityHandler) GetActivity(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.activity.List(c.Request().Context(), getCaller(c), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}
