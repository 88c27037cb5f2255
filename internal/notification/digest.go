package notification

import (
	"fmt"
	"strings"

	"github.com/studioops/support-mailroom/internal/domain"
)

// RenderDigestEmail builds one batched email covering every queued
// notification in a drained bucket.
func RenderDigestEmail(queued []domain.Notification) EmailTemplate {
	subject := fmt.Sprintf("You have %d new notifications", len(queued))
	if len(queued) == 1 {
		subject = "You have 1 new notification"
	}

	var html strings.Builder
	var plain strings.Builder
	html.WriteString("<p>While you were away:</p><ul>")
	plain.WriteString("While you were away:\n")
	for _, n := range queued {
		html.WriteString(fmt.Sprintf("<li><strong>%s</strong>: %s</li>", n.Title, n.Message))
		plain.WriteString(fmt.Sprintf("- %s: %s\n", n.Title, n.Message))
	}
	html.WriteString("</ul>")

	return EmailTemplate{
		Subject:   subject,
		HTML:      html.String(),
		PlainText: plain.String(),
	}
}
