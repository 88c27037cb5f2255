package domain

import "time"

// InboundMessage is the normalized form of one received email. It is built
// once per webhook event and never mutated afterwards.
type InboundMessage struct {
	ID          string
	From        string
	To          []string
	CC          []string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
	ReceivedAt  time.Time
	MessageID   string
	InReplyTo   string
	References  []string
}

// Attachment is an immutable file carried by an inbound message.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
	SizeBytes   int64
}
