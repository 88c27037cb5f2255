package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/studioops/support-mailroom/internal/config"
	"github.com/studioops/support-mailroom/internal/domain"
)

// EmailSender delivers one email. Retry policy belongs to the
// implementation; the router reports failures without retrying.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html, plainText string) error
}

// ChatSender posts one message to the team-chat integration.
type ChatSender interface {
	SendChatMessage(ctx context.Context, target, text string) error
}

// SMSSender delivers one text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, text string) error
}

// InAppSender surfaces a notification in the persisted inbox. The router
// already stores every routed notification, so the default sender only
// records the delivery.
type InAppSender interface {
	PersistInApp(ctx context.Context, notification *domain.Notification) error
}

// LogEmailSender logs outbound email instead of sending it; the real
// SMTP integration is the deployment's concern.
type LogEmailSender struct {
	Logger *zap.Logger
	From   string
}

// SendEmail logs the would-be delivery.
func (s LogEmailSender) SendEmail(ctx context.Context, to, subject, html, plainText string) error {
	s.Logger.Info("email notification",
		zap.String("from", s.From),
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// WebhookChatSender posts a JSON text payload to a configured webhook.
type WebhookChatSender struct {
	URL    string
	Client *http.Client
	Logger *zap.Logger
}

// NewWebhookChatSender builds a sender with a bounded-timeout client.
func NewWebhookChatSender(cfg config.NotificationConfig, logger *zap.Logger) *WebhookChatSender {
	return &WebhookChatSender{
		URL:    cfg.ChatWebhookURL,
		Client: &http.Client{Timeout: 10 * time.Second},
		Logger: logger,
	}
}

// SendChatMessage posts the message, treating a missing URL as a
// configuration-level opt-out.
func (s *WebhookChatSender) SendChatMessage(ctx context.Context, target, text string) error {
	if s.URL == "" {
		s.Logger.Debug("chat webhook not configured; skipping",
			zap.String("target", target))
		return nil
	}

	payload, err := json.Marshal(map[string]string{"target": target, "text": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat webhook returned %d", resp.StatusCode)
	}
	return nil
}

// LogSMSSender logs outbound SMS instead of sending it.
type LogSMSSender struct {
	Logger *zap.Logger
	From   string
}

// SendSMS logs the would-be delivery.
func (s LogSMSSender) SendSMS(ctx context.Context, to, text string) error {
	s.Logger.Info("sms notification",
		zap.String("from", s.From),
		zap.String("to", to))
	return nil
}

// LogInAppSender records in-app deliveries in the log.
type LogInAppSender struct {
	Logger *zap.Logger
}

// PersistInApp logs the delivery; the notification record itself is
// already in the queue.
func (s LogInAppSender) PersistInApp(ctx context.Context, notification *domain.Notification) error {
	s.Logger.Debug("in-app notification",
		zap.String("notification_id", notification.ID),
		zap.String("user_id", notification.UserID))
	return nil
}
