package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notificationRepo}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/mark-read", h.MarkRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns the caller's notifications, newest first. The
// isRead query parameter filters by read state.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page := int(queryInt64(c, "page", 1))
	limit := int(queryInt64(c, "limit", 20))

	var isRead *bool
	if v := c.QueryParam("isRead"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "isRead must be true or false")
		}
		isRead = &parsed
	}

	recipientID := middleware.UserID(c).Hex()
	notifications, total, err := h.notificationRepository.GetByRecipient(recipientID, page, limit, isRead)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notifications,
		"pagination":    models.NewPagination(int64(page), int64(limit), total),
	})
}

// GetUnreadCount returns how many unread notifications the caller has.
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notificationRepository.GetUnreadCount(middleware.UserID(c).Hex())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": count})
}

// MarkRead marks the listed notifications read, or all of them with markAll.
// Only the caller's own rows are touched.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	var req models.MarkReadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if !req.MarkAll && len(req.NotificationIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Provide notificationIds or set markAll")
	}

	recipientID := middleware.UserID(c).Hex()
	var marked int64
	var err error
	if req.MarkAll {
		marked, err = h.notificationRepository.MarkAllAsRead(recipientID)
	} else {
		marked, err = h.notificationRepository.MarkAsRead(recipientID, req.NotificationIDs)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"marked": marked})
}

// DeleteNotification removes one of the caller's notifications.
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID format")
	}

	err = h.notificationRepository.DeleteNotification(middleware.UserID(c).Hex(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification deleted"})
}
