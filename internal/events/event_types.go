package events

import (
	"time"

	"github.com/studioops/support-mailroom/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEmailTicketCreated   EventType = "email_ticket_created"
	EventEmailCommentAppended EventType = "email_comment_appended"
	EventEmailDuplicateFound  EventType = "email_duplicate_found"
)

// Event represents a domain event emitted by the ingestion pipeline.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EmailTicketCreatedPayload accompanies EventEmailTicketCreated.
type EmailTicketCreatedPayload struct {
	ExternalKey string                `json:"external_key"`
	StudioID    string                `json:"studio_id"`
	SenderEmail string                `json:"sender_email"`
	SenderName  string                `json:"sender_name"`
	Subject     string                `json:"subject"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
}

// EmailCommentAppendedPayload accompanies EventEmailCommentAppended.
type EmailCommentAppendedPayload struct {
	SenderEmail string  `json:"sender_email"`
	MessageID   string  `json:"message_id,omitempty"`
	MatchedVia  string  `json:"matched_via"`
	Confidence  float64 `json:"confidence"`
}

// EmailDuplicateFoundPayload accompanies EventEmailDuplicateFound.
type EmailDuplicateFoundPayload struct {
	SenderEmail string `json:"sender_email"`
	MessageID   string `json:"message_id,omitempty"`
	Reason      string `json:"reason"`
}
