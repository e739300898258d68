package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("/notifications", h.GetNotifications, authed)
	g.POST("/notifications", h.CreateNotification, authed)
	g.GET("/notifications/unread-count", h.GetUnreadCount, authed)
	g.PUT("/notifications/read-all", h.MarkAllAsRead, authed)
	g.PUT("/notifications/:id/read", h.MarkAsRead, authed)
	g.DELETE("/notifications/:id", h.DeleteNotification, authed)
}

// GetNotifications returns the caller's notifications, newest first. ?only_unread=true
// restricts the list to unread ones.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	onlyUnread := false
	if raw := c.QueryParam("only_unread"); raw != "" {
		if onlyUnread, err = strconv.ParseBool(raw); err != nil {
			return apperrors.BadRequest("only_unread must be a boolean")
		}
	}
	page, err := h.notifications.List(c.Request().Context(), getCaller(c), onlyUnread, p)
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

// CreateNotification sends a notification from the caller to one receiver
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.notifications.Create(c.Request().Context(), getCaller(c), req)
	if err != nil {
		return err
	}
	return respondCreated(c, n)
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), getCaller(c))
	if err != nil {
		return err
	}
	return respondOK(c, echo.Map{"unread_count": count})
}

// MarkAsRead marks a single notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	n, err := h.notifications.MarkAsRead(c.Request().Context(), getCaller(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respondOK(c, n)
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	updated, err := h.notifications.MarkAllAsRead(c.Request().Context(), getCaller(c))
	if err != nil {
		return err
	}
	return respondOK(c, echo.Map{"updated": updated})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	if err := h.notifications.Delete(c.Request().Context(), getCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
