package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like routes for every likeable kind
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	targets := map[string]func(string) *models.Ref{
		"posts":    models.PostRef,
		"comments": models.CommentRef,
		"reels":    models.ReelRef,
	}
	for prefix, ref := range targets {
		g.POST("/"+prefix+"/:id/like", h.like(ref), authed)
		g.DELETE("/"+prefix+"/:id/like", h.unlike(ref), authed)
		g.GET("/"+prefix+"/:id/likes", h.status(ref))
	}
}

func (h *LikeHandler) like(ref func(string) *models.Ref) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.likes.Like(c.Request().Context(), getCaller(c), ref(c.Param("id"))); err != nil {
			return err
		}
		return respondCreated(c, echo.Map{"liked": true})
	}
}

func (h *LikeHandler) unlike(ref func(string) *models.Ref) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.likes.Unlike(c.Request().Context(), getCaller(c), ref(c.Param("id"))); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *LikeHandler) status(ref func(string) *models.Ref) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, err := h.likes.Status(c.Request().Context(), getCaller(c), ref(c.Param("id")))
		if err != nil {
			return err
		}
		return respondOK(c, status)
	}
}
