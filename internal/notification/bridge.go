package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/studioops/support-mailroom/internal/domain"
	"github.com/studioops/support-mailroom/internal/events"
)

// Bridge subscribes to ingestion events and turns them into
// notifications, keeping the pipeline decoupled from the router.
type Bridge struct {
	dispatcher events.Dispatcher
	router     *Router
	logger     *zap.Logger
}

// NewBridge creates the bridge.
func NewBridge(dispatcher events.Dispatcher, router *Router, logger *zap.Logger) *Bridge {
	return &Bridge{
		dispatcher: dispatcher,
		router:     router,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to ingestion events.
func (b *Bridge) RegisterHandlers() {
	if b.dispatcher == nil {
		return
	}
	b.dispatcher.Subscribe(events.EventEmailTicketCreated, b.handleTicketCreated)
	b.dispatcher.Subscribe(events.EventEmailCommentAppended, b.handleCommentAppended)
}

// handleTicketCreated sends the sender their creation confirmation.
func (b *Bridge) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EmailTicketCreatedPayload)
	if !ok {
		b.logger.Warn("unexpected payload for ticket created event",
			zap.String("event_id", event.ID))
		return nil
	}

	b.router.SendNotification(ctx, SendInput{
		UserIDs: []string{payload.SenderEmail},
		Type:    domain.NotificationTicketCreated,
		Title:   "Ticket " + payload.ExternalKey + " received",
		Message: "Your request has been received and a ticket was created.",
		Payload: map[string]any{
			"ticketNumber": payload.ExternalKey,
			"title":        payload.Subject,
		},
		Channels: []domain.Channel{domain.ChannelEmail},
	})
	return nil
}

// handleCommentAppended only records the event; reply receipts would
// spam active threads, and owner/watcher fan-out belongs to the ticket
// management surface.
func (b *Bridge) handleCommentAppended(ctx context.Context, event events.Event) error {
	b.logger.Info("comment appended",
		zap.String("ticket_id", event.TicketID))
	return nil
}
