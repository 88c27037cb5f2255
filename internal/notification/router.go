package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studioops/support-mailroom/internal/domain"
	"github.com/studioops/support-mailroom/internal/observability"
	"github.com/studioops/support-mailroom/internal/repository"
)

// Scheduler ensures a future flush of a digest bucket. Implementations
// must be idempotent: repeated calls before the flush fires schedule
// exactly one delivery.
type Scheduler interface {
	ScheduleDigestFlush(userID string, frequency domain.DigestFrequency)
}

// DeliveryResult records one channel delivery attempt.
type DeliveryResult struct {
	NotificationID string
	Channel        domain.Channel
	OK             bool
	Err            error
}

// SendInput describes one notification to fan out.
type SendInput struct {
	UserIDs  []string
	Type     domain.NotificationType
	Title    string
	Message  string
	Payload  map[string]any
	Channels []domain.Channel
	Priority domain.NotificationPriority
}

// Router resolves per-user preferences and either delivers a
// notification immediately or queues it into a digest bucket.
type Router struct {
	notifications repository.NotificationRepository
	prefs         repository.PreferenceRepository
	digests       repository.DigestRepository
	email         EmailSender
	chat          ChatSender
	sms           SMSSender
	inApp         InAppSender
	scheduler     Scheduler
	logger        *zap.Logger
	metrics       *observability.Metrics
	now           func() time.Time
}

// RouterDependencies bundles collaborators for the router.
type RouterDependencies struct {
	NotificationRepo repository.NotificationRepository
	PreferenceRepo   repository.PreferenceRepository
	DigestRepo       repository.DigestRepository
	Email            EmailSender
	Chat             ChatSender
	SMS              SMSSender
	InApp            InAppSender
	Scheduler        Scheduler
	Logger           *zap.Logger
	Metrics          *observability.Metrics
	Now              func() time.Time
}

// NewRouter constructs the router.
func NewRouter(deps RouterDependencies) *Router {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Router{
		notifications: deps.NotificationRepo,
		prefs:         deps.PreferenceRepo,
		digests:       deps.DigestRepo,
		email:         deps.Email,
		chat:          deps.Chat,
		sms:           deps.SMS,
		inApp:         deps.InApp,
		scheduler:     deps.Scheduler,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		now:           now,
	}
}

// SetScheduler attaches the digest flush scheduler. The scheduler needs
// the router to deliver digests, so it is wired after construction.
func (r *Router) SetScheduler(scheduler Scheduler) {
	r.scheduler = scheduler
}

// SendNotification constructs one Notification per recipient and routes
// each independently. Every recipient gets a constructed record back,
// unsubscribed recipients included; routing failures for one recipient
// or one channel never affect the others.
func (r *Router) SendNotification(ctx context.Context, input SendInput) []domain.Notification {
	channels := input.Channels
	if len(channels) == 0 {
		channels = []domain.Channel{domain.ChannelInApp}
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.NotificationPriorityMedium
	}

	result := make([]domain.Notification, 0, len(input.UserIDs))
	for _, userID := range input.UserIDs {
		notification := domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      input.Type,
			Title:     input.Title,
			Message:   input.Message,
			Payload:   input.Payload,
			Channels:  channels,
			Priority:  priority,
			CreatedAt: r.now(),
		}
		r.route(ctx, &notification)
		result = append(result, notification)
	}
	return result
}

func (r *Router) route(ctx context.Context, notification *domain.Notification) {
	prefs, err := r.prefs.Get(ctx, notification.UserID)
	if err != nil {
		r.logger.Error("preference lookup failed; notification not routed",
			zap.String("user_id", notification.UserID),
			zap.Error(err))
		return
	}

	// Unsubscribed types short-circuit before queueing or delivery; the
	// constructed record still goes back to the caller for audit.
	if prefs.Unsubscribed(notification.Type) {
		r.logger.Debug("recipient unsubscribed",
			zap.String("user_id", notification.UserID),
			zap.String("type", string(notification.Type)))
		return
	}

	if err := r.notifications.Create(ctx, notification); err != nil {
		r.logger.Error("failed to persist notification",
			zap.String("user_id", notification.UserID),
			zap.Error(err))
		return
	}

	frequency := prefs.FrequencyFor(notification.Type)
	queued := false
	for _, channel := range notification.Channels {
		if !prefs.ChannelEnabled(channel) {
			continue
		}
		switch frequency {
		case domain.FrequencyImmediate:
			res := r.deliverToChannel(ctx, notification, channel)
			r.metrics.RecordDelivery(string(channel), res.OK)
			if !res.OK {
				r.logger.Warn("channel delivery failed",
					zap.String("notification_id", notification.ID),
					zap.String("channel", string(channel)),
					zap.Error(res.Err))
			}
		case domain.FrequencyNever:
			// Delivery suppressed without unsubscribing from the type.
		default:
			if queued {
				continue
			}
			if err := r.digests.Enqueue(ctx, notification.UserID, frequency, notification); err != nil {
				r.logger.Error("digest enqueue failed",
					zap.String("notification_id", notification.ID),
					zap.Error(err))
				continue
			}
			queued = true
			if r.scheduler != nil {
				r.scheduler.ScheduleDigestFlush(notification.UserID, frequency)
			}
		}
	}
}

// deliverToChannel dispatches to the channel's sender. Failures are
// returned as a result, never propagated, so one channel cannot abort
// another's attempt.
func (r *Router) deliverToChannel(ctx context.Context, notification *domain.Notification, channel domain.Channel) DeliveryResult {
	var err error
	switch channel {
	case domain.ChannelEmail:
		template := RenderEmailTemplate(notification.Type, notification.Payload)
		err = r.email.SendEmail(ctx, notification.UserID, template.Subject, template.HTML, template.PlainText)
	case domain.ChannelChat:
		err = r.chat.SendChatMessage(ctx, notification.UserID, notification.Title+": "+notification.Message)
	case domain.ChannelSMS:
		err = r.sms.SendSMS(ctx, notification.UserID, notification.Title+": "+notification.Message)
	case domain.ChannelInApp:
		err = r.inApp.PersistInApp(ctx, notification)
	default:
		r.logger.Warn("unknown channel requested",
			zap.String("channel", string(channel)))
	}
	return DeliveryResult{
		NotificationID: notification.ID,
		Channel:        channel,
		OK:             err == nil,
		Err:            err,
	}
}

// UpdateUserPreferences shallow-merges the partial update onto the
// stored (or default) preferences. Nested maps replace wholesale: a
// partial channels update replaces the whole channels map.
func (r *Router) UpdateUserPreferences(ctx context.Context, userID string, update PreferenceUpdate) (*domain.UserNotificationPreferences, error) {
	prefs, err := r.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Channels != nil {
		prefs.Channels = update.Channels
	}
	if update.DigestFrequencies != nil {
		prefs.DigestFrequencies = update.DigestFrequencies
	}
	if update.QuietHours != nil {
		prefs.QuietHours = update.QuietHours
	}
	if update.UnsubscribedTypes != nil {
		prefs.UnsubscribedTypes = update.UnsubscribedTypes
	}
	if err := r.prefs.Save(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// PreferenceUpdate carries the fields of a partial preference update;
// nil fields are left untouched.
type PreferenceUpdate struct {
	Channels          map[domain.Channel]bool                            `json:"channels,omitempty"`
	DigestFrequencies map[domain.NotificationType]domain.DigestFrequency `json:"digest_frequencies,omitempty"`
	QuietHours        *domain.QuietHours                                 `json:"quiet_hours,omitempty"`
	UnsubscribedTypes []domain.NotificationType                          `json:"unsubscribed_types,omitempty"`
}

// GetUserPreferences returns the stored or default preferences.
func (r *Router) GetUserPreferences(ctx context.Context, userID string) (*domain.UserNotificationPreferences, error) {
	return r.prefs.Get(ctx, userID)
}

// GetUserNotifications lists a user's notifications in insertion order,
// oldest first, at most limit entries.
func (r *Router) GetUserNotifications(ctx context.Context, userID string, limit int, unreadOnly bool) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.notifications.ListByUser(ctx, userID, limit, unreadOnly)
}

// MarkAsRead flips a notification's read flag. Unknown ids are a no-op.
func (r *Router) MarkAsRead(ctx context.Context, notificationID string) error {
	return r.notifications.MarkRead(ctx, notificationID)
}

// DeliverDigest drains the (userID, frequency) bucket and sends one
// batched email covering its notifications. Called by the scheduler when
// a digest timer fires. An empty bucket delivers nothing.
func (r *Router) DeliverDigest(ctx context.Context, userID string, frequency domain.DigestFrequency) error {
	queued, err := r.digests.Drain(ctx, userID, frequency)
	if err != nil {
		return err
	}
	if len(queued) == 0 {
		return nil
	}

	prefs, err := r.prefs.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !prefs.ChannelEnabled(domain.ChannelEmail) {
		r.logger.Debug("digest suppressed; email channel disabled",
			zap.String("user_id", userID))
		return nil
	}

	template := RenderDigestEmail(queued)
	if err := r.email.SendEmail(ctx, userID, template.Subject, template.HTML, template.PlainText); err != nil {
		r.metrics.RecordDelivery(string(domain.ChannelEmail), false)
		return err
	}
	r.metrics.RecordDelivery(string(domain.ChannelEmail), true)
	r.logger.Info("digest delivered",
		zap.String("user_id", userID),
		zap.String("frequency", string(frequency)),
		zap.Int("count", len(queued)))
	return nil
}
