package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates urgency levels assigned during ingestion.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketCategory classifies a ticket by the request it carries.
type TicketCategory string

const (
	CategoryGeneralInquiry TicketCategory = "GENERAL_INQUIRY"
	CategoryBilling        TicketCategory = "BILLING"
	CategoryTechnical      TicketCategory = "TECHNICAL"
	CategoryClassSession   TicketCategory = "CLASS_SESSION"
	CategoryFeedback       TicketCategory = "FEEDBACK"
)

// EmailMetadata preserves the wire-level envelope of the email a ticket
// originated from.
type EmailMetadata struct {
	MessageID  string    `json:"message_id"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	CC         []string  `json:"cc,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Ticket is the aggregate for support requests created from inbound email.
type Ticket struct {
	ID            string
	ExternalKey   string
	StudioID      string
	Title         string
	Description   string
	Status        TicketStatus
	Priority      TicketPriority
	Category      TicketCategory
	SenderEmail   string
	SenderName    string
	EmailMetadata *EmailMetadata
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClosedAt      *time.Time
}

// TicketComment captures one message appended to a ticket thread.
type TicketComment struct {
	ID          string
	TicketID    string
	AuthorName  string
	AuthorEmail string
	Body        string
	Attachments []Attachment
	CreatedAt   time.Time
}
