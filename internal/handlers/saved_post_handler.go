package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles saved post HTTP requests
type SavedPostHandler struct {
	saved *services.SavedPostService
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(saved *services.SavedPostService) *SavedPostHandler {
	return &SavedPostHandler{saved: saved}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("/posts/:id/save", h.SavePost, authed)
	g.DELETE("/posts/:id/save", h.UnsavePost, authed)
	g.GET("/saved-posts", h.GetSavedPosts, authed)
}

// SavePost saves/bookmarks a post
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	saved, err := h.saved.Save(c.Request().Context(), getCaller(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respondCreated(c, saved)
}

func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	if err := h.saved.Unsave(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSavedPosts lists the caller's bookmarks, most recently saved first
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.saved.List(c.Request().Context(), getCaller(c), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}
