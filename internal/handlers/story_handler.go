package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles HTTP requests related to stories
type StoryHandler struct {
	stories *services.StoryService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories *services.StoryService) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// RegisterStoryRoutes registers story-related routes. Stories are only visible to
// signed-in users.
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("/stories", h.GetStories, authed)
	g.GET("/stories/:id", h.GetStory, authed)
	g.POST("/stories", h.CreateStory, authed)
	g.DELETE("/stories/:id", h.DeleteStory, authed)
	g.POST("/stories/:id/seen", h.MarkAsSeen, authed)
	g.GET("/stories/:id/viewers", h.GetViewers, authed)
}

// GetStories lists active stories from the caller and the users they follow
func (h *StoryHandler) GetStories(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.stories.ListActive(c.Request().Context(), getCaller(c), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (h *StoryHandler) GetStory(c echo.Context) error {
	story, err := h.stories.Get(c.Request().Context(), getCaller(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respondOK(c, story)
}

func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	story, err := h.stories.Create(c.Request().Context(), getCaller(c), req)
	if err != nil {
		return err
	}
	return respondCreated(c, story)
}

func (h *StoryHandler) DeleteStory(c echo.Context) error {
	if err := h.stories.Delete(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAsSeen records a view. Only the first view notifies the owner.
func (h *StoryHandler) MarkAsSeen(c echo.Context) error {
	if err := h.stories.View(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return respondOK(c, echo.Map{"seen": true})
}

func (h *StoryHandler) GetViewers(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.stories.Viewers(c.Request().Context(), getCaller(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}
