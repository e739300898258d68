package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ReactionHandler handles emoji reactions on any target kind
type ReactionHandler struct {
	reactions *services.ReactionService
}

func NewReactionHandler(reactions *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.PUT("/reactions/:kind/:id", h.React, authed)
	g.DELETE("/reactions/:kind/:id", h.Unreact, authed)
	g.GET("/reactions/:kind/:id", h.GetReactions, authed)
}

func targetFromPath(c echo.Context) (*models.Ref, error) {
	kind, err := services.ParseKind(c.Param("kind"))
	if err != nil {
		return nil, err
	}
	return &models.Ref{Kind: kind, ID: c.Param("id")}, nil
}

// React sets the caller's emoji on a target, replacing an earlier one
func (h *ReactionHandler) React(c echo.Context) error {
	target, err := targetFromPath(c)
	if err != nil {
		return err
	}
	var req models.ReactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	reaction, err := h.reactions.React(c.Request().Context(), getCaller(c), target, req)
	if err != nil {
		return err
	}
	return respondOK(c, reaction)
}

func (h *ReactionHandler) Unreact(c echo.Context) error {
	target, err := targetFromPath(c)
	if err != nil {
		return err
	}
	if err := h.reactions.Unreact(c.Request().Context(), getCaller(c), target); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReactionHandler) GetReactions(c echo.Context) error {
	target, err := targetFromPath(c)
	if err != nil {
		return err
	}
	reactions, err := h.reactions.List(c.Request().Context(), getCaller(c), target)
	if err != nil {
		return err
	}
	return respondOK(c, reactions)
}
