package ingestion

import (
	"encoding/base64"
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studioops/support-mailroom/internal/domain"
)

// UnknownSender is substituted when the upstream payload carries no
// from address.
const UnknownSender = "unknown@example.com"

// NoSubject is substituted when the upstream payload carries no subject.
const NoSubject = "(No Subject)"

// RawEmail is the loosely-typed inbound payload accepted from webhook
// providers. Upstream parsers disagree on field names and on whether
// recipient lists are scalars or arrays, so decoding tolerates both
// camelCase and header-style keys and coerces scalars into lists.
type RawEmail struct {
	From        string
	To          []string
	CC          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []RawAttachment
	Date        *time.Time
	MessageID   string
	InReplyTo   string
	References  []string
}

// RawAttachment is one loosely-typed attachment entry.
type RawAttachment struct {
	FileName    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
	Size        int64  `json:"size"`
}

// UnmarshalJSON decodes the provider payload, resolving alternate key
// spellings and scalar-or-list fields.
func (r *RawEmail) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.From = stringField(fields, "from")
	r.To = stringListField(fields, "to")
	r.CC = stringListField(fields, "cc")
	r.Subject = stringField(fields, "subject")
	r.Text = stringField(fields, "text", "body")
	r.HTML = stringField(fields, "html")
	r.MessageID = stringField(fields, "messageId", "message-id")
	r.InReplyTo = stringField(fields, "inReplyTo", "in-reply-to")
	r.References = stringListField(fields, "references")

	if raw, ok := fields["date"]; ok {
		var ts time.Time
		if err := json.Unmarshal(raw, &ts); err == nil {
			r.Date = &ts
		}
	}
	if raw, ok := fields["attachments"]; ok {
		var atts []RawAttachment
		if err := json.Unmarshal(raw, &atts); err == nil {
			r.Attachments = atts
		}
	}
	return nil
}

func stringField(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return ""
}

func stringListField(fields map[string]json.RawMessage, keys ...string) []string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			return list
		}
		var scalar string
		if err := json.Unmarshal(raw, &scalar); err == nil && scalar != "" {
			return []string{scalar}
		}
	}
	return nil
}

// Normalize builds the canonical InboundMessage from a raw payload,
// applying the defaulting rules for missing fields and reducing the body
// to plain text with signatures and quoted replies stripped.
func Normalize(raw RawEmail, now time.Time) *domain.InboundMessage {
	from := strings.TrimSpace(raw.From)
	if from == "" {
		from = UnknownSender
	}

	subject := strings.TrimSpace(raw.Subject)
	if subject == "" {
		subject = NoSubject
	}

	body := raw.Text
	if body == "" && raw.HTML != "" {
		body = StripHTML(raw.HTML)
	}
	body = StripSignature(body)
	body = TruncateQuotedReply(body)
	body = strings.TrimSpace(body)

	to := raw.To
	if to == nil {
		to = []string{}
	}

	receivedAt := now
	if raw.Date != nil {
		receivedAt = *raw.Date
	}

	attachments := make([]domain.Attachment, 0, len(raw.Attachments))
	for _, att := range raw.Attachments {
		content, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			content = []byte(att.Content)
		}
		size := att.Size
		if size == 0 {
			size = int64(len(content))
		}
		attachments = append(attachments, domain.Attachment{
			FileName:    att.FileName,
			ContentType: att.ContentType,
			Content:     content,
			SizeBytes:   size,
		})
	}

	return &domain.InboundMessage{
		ID:          uuid.NewString(),
		From:        from,
		To:          to,
		CC:          raw.CC,
		Subject:     subject,
		Body:        body,
		HTMLBody:    raw.HTML,
		Attachments: attachments,
		ReceivedAt:  receivedAt,
		MessageID:   strings.TrimSpace(raw.MessageID),
		InReplyTo:   strings.TrimSpace(raw.InReplyTo),
		References:  raw.References,
	}
}

// SenderAddress extracts the bare address from a From value that may be
// in "Display Name <addr>" form.
func SenderAddress(from string) string {
	if parsed, err := mail.ParseAddress(from); err == nil {
		return parsed.Address
	}
	return strings.TrimSpace(from)
}

// SenderName extracts the display name from a From value, falling back
// to the local part of the address.
func SenderName(from string) string {
	if parsed, err := mail.ParseAddress(from); err == nil && parsed.Name != "" {
		return parsed.Name
	}
	addr := SenderAddress(from)
	if at := strings.Index(addr, "@"); at > 0 {
		return addr[:at]
	}
	return addr
}

// SenderDomain returns the domain of the sender address, empty when the
// address carries none.
func SenderDomain(from string) string {
	addr := SenderAddress(from)
	if at := strings.Index(addr, "@"); at >= 0 && at < len(addr)-1 {
		return strings.ToLower(addr[at+1:])
	}
	return ""
}
