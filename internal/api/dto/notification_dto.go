package dto

import (
	"time"

	"github.com/studioops/support-mailroom/internal/domain"
	"github.com/studioops/support-mailroom/internal/notification"
)

// SendNotificationRequest payload. UserIDs accepts one or many
// recipients.
type SendNotificationRequest struct {
	UserIDs  []string                    `json:"user_ids"`
	UserID   string                      `json:"user_id"`
	Type     domain.NotificationType     `json:"type"`
	Title    string                      `json:"title"`
	Message  string                      `json:"message"`
	Payload  map[string]any              `json:"payload"`
	Channels []domain.Channel            `json:"channels"`
	Priority domain.NotificationPriority `json:"priority"`
}

// Recipients resolves the one-or-many recipient forms.
func (r SendNotificationRequest) Recipients() []string {
	if len(r.UserIDs) > 0 {
		return r.UserIDs
	}
	if r.UserID != "" {
		return []string{r.UserID}
	}
	return nil
}

// NotificationResponse represents one notification record.
type NotificationResponse struct {
	ID        string                      `json:"id"`
	UserID    string                      `json:"user_id"`
	Type      domain.NotificationType     `json:"type"`
	Title     string                      `json:"title"`
	Message   string                      `json:"message"`
	Payload   map[string]any              `json:"payload,omitempty"`
	Channels  []domain.Channel            `json:"channels"`
	Priority  domain.NotificationPriority `json:"priority"`
	Read      bool                        `json:"read"`
	CreatedAt time.Time                   `json:"created_at"`
	ExpiresAt *time.Time                  `json:"expires_at,omitempty"`
}

// FromNotification maps the domain record.
func FromNotification(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Payload:   n.Payload,
		Channels:  n.Channels,
		Priority:  n.Priority,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
}

// UpdatePreferencesRequest carries a partial preference update.
type UpdatePreferencesRequest = notification.PreferenceUpdate

// PreferencesResponse represents stored preferences.
type PreferencesResponse struct {
	UserID            string                                             `json:"user_id"`
	Channels          map[domain.Channel]bool                            `json:"channels"`
	DigestFrequencies map[domain.NotificationType]domain.DigestFrequency `json:"digest_frequencies"`
	QuietHours        *domain.QuietHours                                 `json:"quiet_hours,omitempty"`
	UnsubscribedTypes []domain.NotificationType                          `json:"unsubscribed_types"`
}

// FromPreferences maps the domain record.
func FromPreferences(p *domain.UserNotificationPreferences) PreferencesResponse {
	return PreferencesResponse{
		UserID:            p.UserID,
		Channels:          p.Channels,
		DigestFrequencies: p.DigestFrequencies,
		QuietHours:        p.QuietHours,
		UnsubscribedTypes: p.UnsubscribedTypes,
	}
}
