package domain

import "time"

// NotificationType enumerates the events users can be notified about.
type NotificationType string

const (
	NotificationTicketCreated   NotificationType = "TICKET_CREATED"
	NotificationTicketAssigned  NotificationType = "TICKET_ASSIGNED"
	NotificationTicketUpdated   NotificationType = "TICKET_UPDATED"
	NotificationTicketCommented NotificationType = "TICKET_COMMENTED"
	NotificationTicketResolved  NotificationType = "TICKET_RESOLVED"
	NotificationTicketClosed    NotificationType = "TICKET_CLOSED"
	NotificationSLAWarning      NotificationType = "SLA_WARNING"
	NotificationSLABreach       NotificationType = "SLA_BREACH"
	NotificationMention         NotificationType = "MENTION"
	NotificationStatusChange    NotificationType = "STATUS_CHANGE"
)

// Channel is a delivery medium for a notification.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelChat  Channel = "CHAT_WEBHOOK"
	ChannelInApp Channel = "IN_APP"
	ChannelSMS   Channel = "SMS"
)

// NotificationPriority orders notifications by urgency.
type NotificationPriority string

const (
	NotificationPriorityLow      NotificationPriority = "LOW"
	NotificationPriorityMedium   NotificationPriority = "MEDIUM"
	NotificationPriorityHigh     NotificationPriority = "HIGH"
	NotificationPriorityCritical NotificationPriority = "CRITICAL"
)

// DigestFrequency controls how a notification type reaches a user.
type DigestFrequency string

const (
	FrequencyImmediate DigestFrequency = "IMMEDIATE"
	FrequencyHourly    DigestFrequency = "HOURLY"
	FrequencyDaily     DigestFrequency = "DAILY"
	FrequencyWeekly    DigestFrequency = "WEEKLY"
	FrequencyNever     DigestFrequency = "NEVER"
)

// Notification records one event a user should learn about. A record is
// always constructed when SendNotification runs, even for unsubscribed
// recipients, so the audit trail stays complete.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Payload   map[string]any
	Channels  []Channel
	Priority  NotificationPriority
	Read      bool
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// QuietHours is an optional do-not-disturb window in local time.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// UserNotificationPreferences controls per-user routing. Missing channel
// entries mean enabled; only an explicit false disables a channel.
type UserNotificationPreferences struct {
	UserID            string                               `json:"user_id"`
	Channels          map[Channel]bool                     `json:"channels"`
	DigestFrequencies map[NotificationType]DigestFrequency `json:"digest_frequencies"`
	QuietHours        *QuietHours                          `json:"quiet_hours,omitempty"`
	UnsubscribedTypes []NotificationType                   `json:"unsubscribed_types"`
}

// Unsubscribed reports whether the user opted out of the given type.
func (p *UserNotificationPreferences) Unsubscribed(t NotificationType) bool {
	for _, unsub := range p.UnsubscribedTypes {
		if unsub == t {
			return true
		}
	}
	return false
}

// FrequencyFor resolves the digest frequency for a type, defaulting to
// immediate delivery when the user has not configured one.
func (p *UserNotificationPreferences) FrequencyFor(t NotificationType) DigestFrequency {
	if freq, ok := p.DigestFrequencies[t]; ok && freq != "" {
		return freq
	}
	return FrequencyImmediate
}

// ChannelEnabled reports whether a channel may be used. Unset entries are
// enabled; opting out requires an explicit false.
func (p *UserNotificationPreferences) ChannelEnabled(ch Channel) bool {
	enabled, ok := p.Channels[ch]
	if !ok {
		return true
	}
	return enabled
}

// DefaultPreferences returns the system defaults synthesized on first
// access for a user without stored preferences.
func DefaultPreferences(userID string) *UserNotificationPreferences {
	return &UserNotificationPreferences{
		UserID:            userID,
		Channels:          map[Channel]bool{},
		DigestFrequencies: map[NotificationType]DigestFrequency{},
		UnsubscribedTypes: []NotificationType{},
	}
}
