package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/studioops/support-mailroom/internal/api/dto"
	"github.com/studioops/support-mailroom/internal/notification"
	apperrors "github.com/studioops/support-mailroom/pkg/util/errorutil"
)

// NotificationsHandler exposes the notification routing surface.
type NotificationsHandler struct {
	router *notification.Router
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(router *notification.Router) *NotificationsHandler {
	return &NotificationsHandler{router: router}
}

// Send POST /notifications.
func (h *NotificationsHandler) Send(c *fiber.Ctx) error {
	var req dto.SendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	recipients := req.Recipients()
	if len(recipients) == 0 {
		return apperrors.NewValidationError("user_id or user_ids required", nil)
	}
	if req.Type == "" || req.Title == "" {
		return apperrors.NewValidationError("type and title required", nil)
	}

	sent := h.router.SendNotification(c.Context(), notification.SendInput{
		UserIDs:  recipients,
		Type:     req.Type,
		Title:    req.Title,
		Message:  req.Message,
		Payload:  req.Payload,
		Channels: req.Channels,
		Priority: req.Priority,
	})

	items := make([]dto.NotificationResponse, 0, len(sent))
	for _, n := range sent {
		items = append(items, dto.FromNotification(n))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": items})
}

// List GET /users/:id/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return apperrors.NewValidationError("user id required", nil)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	unreadOnly := c.Query("unread_only") == "true"

	notifications, err := h.router.GetUserNotifications(c.Context(), userID, limit, unreadOnly)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.FromNotification(n))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.router.MarkAsRead(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPreferences GET /users/:id/notification-preferences.
func (h *NotificationsHandler) GetPreferences(c *fiber.Ctx) error {
	prefs, err := h.router.GetUserPreferences(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPreferences(prefs)})
}

// UpdatePreferences PUT /users/:id/notification-preferences.
func (h *NotificationsHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req dto.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	prefs, err := h.router.UpdateUserPreferences(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPreferences(prefs)})
}
