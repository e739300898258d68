package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comments on posts and reels
type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("/posts/:id/comments", h.create(models.PostRef), authed)
	g.GET("/posts/:id/comments", h.list(models.PostRef))
	g.POST("/reels/:id/comments", h.create(models.ReelRef), authed)
	g.GET("/reels/:id/comments", h.list(models.ReelRef))
	g.PUT("/comments/:id", h.UpdateComment, authed)
	g.DELETE("/comments/:id", h.DeleteComment, authed)
}

func (h *CommentHandler) create(parent func(string) *models.Ref) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.CreateCommentRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		comment, err := h.comments.Create(c.Request().Context(), getCaller(c), parent(c.Param("id")), req)
		if err != nil {
			return err
		}
		return respondCreated(c, comment)
	}
}

func (h *CommentHandler) list(parent func(string) *models.Ref) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := pageParams(c)
		if err != nil {
			return err
		}
		page, err := h.comments.List(c.Request().Context(), parent(c.Param("id")), p)
		if err != nil {
			return err
		}
		return respondOK(c, page)
	}
}

// UpdateComment edits a comment owned by the caller
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Update(c.Request().Context(), getCaller(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return respondOK(c, comment)
}

// DeleteComment deletes a comment owned by the caller
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.comments.Delete(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
