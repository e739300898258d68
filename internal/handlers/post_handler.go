package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts and the home feed
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("/posts", h.CreatePost, authed)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost, authed)
	g.DELETE("/posts/:id", h.DeletePost, authed)
	g.GET("/users/:id/posts", h.GetUserPosts)
	g.GET("/feed", h.GetFeed, authed)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.Create(c.Request().Context(), getCaller(c), req)
	if err != nil {
		return err
	}
	return respondCreated(c, post)
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respondOK(c, post)
}

// GetUserPosts lists a user's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.posts.ListByUser(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

// UpdatePost replaces the caption of a post owned by the caller
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.UpdateCaption(c.Request().Context(), getCaller(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return respondOK(c, post)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.Delete(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetFeed returns posts by the caller and the users they follow
func (h *PostHandler) GetFeed(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.posts.Feed(c.Request().Context(), getCaller(c), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}
