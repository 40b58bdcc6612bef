package handler

import (
	"net/http"

	"taskflow/internal/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's recent notifications, newest first.
// @Summary      List notifications
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.Notification
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkRead marks one notification as read. Idempotent.
// @Summary      Mark a notification read
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200 {object} model.Notification
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(c.Request.Context(), principal, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, n)
}

// MarkAllRead marks every notification of the caller as read.
// @Summary      Mark all notifications read
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]string
// @Router       /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(c.Request.Context(), principal); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Delete removes one of the caller's notifications.
// @Summary      Delete a notification
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200 {object} map[string]string
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), principal, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
