package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ReelHandler handles HTTP requests related to reels
type ReelHandler struct {
	reels *services.ReelService
}

func NewReelHandler(reels *services.ReelService) *ReelHandler {
	return &ReelHandler{reels: reels}
}

func (h *ReelHandler) RegisterReelRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("/reels", h.GetReels)
	g.POST("/reels", h.CreateReel, authed)
	g.GET("/reels/:id", h.GetReel)
	g.DELETE("/reels/:id", h.DeleteReel, authed)
	g.POST("/reels/:id/view", h.ViewReel, authed)
	g.GET("/users/:id/reels", h.GetUserReels)
}

func (h *ReelHandler) CreateReel(c echo.Context) error {
	var req models.CreateReelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	reel, err := h.reels.Create(c.Request().Context(), getCaller(c), req)
	if err != nil {
		return err
	}
	return respondCreated(c, reel)
}

func (h *ReelHandler) GetReel(c echo.Context) error {
	reel, err := h.reels.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respondOK(c, reel)
}

// GetReels lists every reel, newest first
func (h *ReelHandler) GetReels(c echo.Context) error {
	return h.list(c, "")
}

func (h *ReelHandler) GetUserReels(c echo.Context) error {
	return h.list(c, c.Param("id"))
}

func (h *ReelHandler) list(c echo.Context, userID string) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.reels.List(c.Request().Context(), userID, p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (h *ReelHandler) DeleteReel(c echo.Context) error {
	if err := h.reels.Delete(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ViewReel counts a view. Only the first view by a user notifies the owner.
func (h *ReelHandler) ViewReel(c echo.Context) error {
	if err := h.reels.View(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return respondOK(c, echo.Map{"viewed": true})
}
