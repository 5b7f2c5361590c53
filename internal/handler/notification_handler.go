package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/middleware"
	"github.com/lexcase/caseflow/internal/model"
)

// NotificationService is what the notification endpoints need
type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, page, limit int, unreadOnly bool) (*model.NotificationPage, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, id, userID string) (*model.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	DeleteNotification(ctx context.Context, id, userID string) error
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// GetNotifications retrieves a page of the caller's notifications
// GET /api/v1/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	pageNum, limit := pageQuery(c)

	page, err := h.notificationService.ListNotifications(c.Request.Context(), userID, pageNum, limit, queryBool(c, "unreadOnly"))
	if err != nil {
		handleError(c, h.logger, "Failed to retrieve notifications", err)
		return
	}

	ok(c, http.StatusOK, page, "")
}

// GetUnreadCount retrieves the count of unread notifications
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	count, err := h.notificationService.GetUnreadCount(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, "Failed to retrieve unread notification count", err)
		return
	}

	ok(c, http.StatusOK, model.NotificationCountResponse{Count: count}, "")
}

// MarkAsRead marks one of the caller's notifications as read
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	n, err := h.notificationService.MarkAsRead(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, h.logger, "Failed to mark notification as read", err)
		return
	}

	ok(c, http.StatusOK, n, "Notification marked as read")
}

// MarkAllAsRead marks all of the caller's notifications as read
// PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	count, err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, "Failed to mark all notifications as read", err)
		return
	}

	ok(c, http.StatusOK, model.NotificationMarkResponse{ModifiedCount: count}, "All notifications marked as read")
}

// Delete removes one of the caller's notifications
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	if err := h.notificationService.DeleteNotification(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, h.logger, "Failed to delete notification", err)
		return
	}

	ok(c, http.StatusOK, nil, "Notification deleted")
}
