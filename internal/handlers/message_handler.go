package handlers

import (
	"net/http"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles direct messages and group chats
type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("/messages/users/:id", h.SendDirect, authed)
	g.GET("/messages/users/:id", h.GetConversation, authed)
	g.DELETE("/messages/:id", h.DeleteMessage, authed)
	g.GET("/groups", h.GetGroups, authed)
	g.POST("/groups", h.CreateGroup, authed)
	g.POST("/groups/:id/members", h.AddMember, authed)
	g.DELETE("/groups/:id/members/me", h.LeaveGroup, authed)
	g.POST("/groups/:id/messages", h.SendGroup, authed)
	g.GET("/groups/:id/messages", h.GetGroupMessages, authed)
}

func (h *MessageHandler) SendDirect(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.messages.SendDirect(c.Request().Context(), getCaller(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return respondCreated(c, msg)
}

// GetConversation lists messages between the caller and another user
func (h *MessageHandler) GetConversation(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.messages.Conversation(c.Request().Context(), getCaller(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	if err := h.messages.Delete(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MessageHandler) GetGroups(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.messages.MyGroups(c.Request().Context(), getCaller(c), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (h *MessageHandler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	group, err := h.messages.CreateGroup(c.Request().Context(), getCaller(c), req)
	if err != nil {
		return err
	}
	return respondCreated(c, group)
}

func (h *MessageHandler) AddMember(c echo.Context) error {
	var req models.AddMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.messages.AddMember(c.Request().Context(), getCaller(c), c.Param("id"), req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MessageHandler) LeaveGroup(c echo.Context) error {
	if err := h.messages.LeaveGroup(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MessageHandler) SendGroup(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.messages.SendGroup(c.Request().Context(), getCaller(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return respondCreated(c, msg)
}

func (h *MessageHandler) GetGroupMessages(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.messages.GroupMessages(c.Request().Context(), getCaller(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}
