package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile and follow-graph requests
type UserHandler struct {
	users   *services.UserService
	follows *services.FollowService
}

func NewUserHandler(users *services.UserService, follows *services.FollowService) *UserHandler {
	return &UserHandler{users: users, follows: follows}
}

// RegisterUserRoutes registers user-related routes. authed guards routes that need a
// signed-in caller.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("/profile", h.GetProfile, authed)
	g.PUT("/profile", h.UpdateProfile, authed)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.POST("/users/:id/follow", h.Follow, authed)
	g.DELETE("/users/:id/follow", h.Unfollow, authed)
}

// GetProfile returns the caller's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.users.Me(c.Request().Context(), getCaller(c))
	if err != nil {
		return err
	}
	return respondOK(c, profile)
}

// UpdateProfile applies a partial update to the caller's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.users.Update(c.Request().Context(), getCaller(c), req)
	if err != nil {
		return err
	}
	return respondOK(c, profile)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.users.Get(c.Request().Context(), getCaller(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respondOK(c, profile)
}

// SearchUsers matches ?q= against usernames and display names
func (h *UserHandler) SearchUsers(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.users.Search(c.Request().Context(), c.QueryParam("q"), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (h *UserHandler) GetFollowers(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.follows.Followers(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (h *UserHandler) GetFollowing(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.follows.Following(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (h *UserHandler) Follow(c echo.Context) error {
	follow, err := h.follows.Follow(c.Request().Context(), getCaller(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respondCreated(c, follow)
}

func (h *UserHandler) Unfollow(c echo.Context) error {
	if err := h.follows.Unfollow(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
