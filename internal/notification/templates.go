package notification

import (
	"fmt"

	"github.com/studioops/support-mailroom/internal/domain"
)

// EmailTemplate is a rendered notification email. Payload values are
// interpolated without escaping; the email sending collaborator is
// responsible for any sanitization.
type EmailTemplate struct {
	Subject   string
	HTML      string
	PlainText string
}

type templateFunc func(payload map[string]any) EmailTemplate

var emailTemplates = map[domain.NotificationType]templateFunc{
	domain.NotificationTicketCreated:   ticketCreatedTemplate,
	domain.NotificationTicketAssigned:  ticketAssignedTemplate,
	domain.NotificationTicketCommented: ticketCommentedTemplate,
	domain.NotificationTicketResolved:  ticketResolvedTemplate,
	domain.NotificationTicketClosed:    ticketClosedTemplate,
	domain.NotificationStatusChange:    statusChangeTemplate,
	domain.NotificationSLAWarning:      slaWarningTemplate,
	domain.NotificationSLABreach:       slaBreachTemplate,
	domain.NotificationTicketUpdated:   ticketUpdatedTemplate,
}

// RenderEmailTemplate renders the email for a notification type. Types
// without a generator fall back to the ticket-updated template.
func RenderEmailTemplate(t domain.NotificationType, payload map[string]any) EmailTemplate {
	generator, ok := emailTemplates[t]
	if !ok {
		generator = ticketUpdatedTemplate
	}
	return generator(payload)
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if val, ok := payload[key]; ok {
		return fmt.Sprintf("%v", val)
	}
	return ""
}

func ticketCreatedTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	title := payloadString(payload, "title")
	return EmailTemplate{
		Subject:   fmt.Sprintf("Ticket %s received: %s", number, title),
		HTML:      fmt.Sprintf("<p>We received your request <strong>%s</strong>.</p><p>Ticket <strong>%s</strong> has been created and our team will get back to you shortly.</p>", title, number),
		PlainText: fmt.Sprintf("We received your request %q. Ticket %s has been created and our team will get back to you shortly.", title, number),
	}
}

func ticketAssignedTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	assignee := payloadString(payload, "assignee")
	return EmailTemplate{
		Subject:   fmt.Sprintf("Ticket %s assigned", number),
		HTML:      fmt.Sprintf("<p>Ticket <strong>%s</strong> has been assigned to %s.</p>", number, assignee),
		PlainText: fmt.Sprintf("Ticket %s has been assigned to %s.", number, assignee),
	}
}

func ticketCommentedTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	comment := payloadString(payload, "comment")
	return EmailTemplate{
		Subject:   fmt.Sprintf("New comment on ticket %s", number),
		HTML:      fmt.Sprintf("<p>A new comment was added to ticket <strong>%s</strong>:</p><blockquote>%s</blockquote>", number, comment),
		PlainText: fmt.Sprintf("A new comment was added to ticket %s:\n\n%s", number, comment),
	}
}

func ticketResolvedTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	return EmailTemplate{
		Subject:   fmt.Sprintf("Ticket %s resolved", number),
		HTML:      fmt.Sprintf("<p>Ticket <strong>%s</strong> has been resolved. Reply to reopen it if the issue persists.</p>", number),
		PlainText: fmt.Sprintf("Ticket %s has been resolved. Reply to reopen it if the issue persists.", number),
	}
}

func ticketClosedTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	return EmailTemplate{
		Subject:   fmt.Sprintf("Ticket %s closed", number),
		HTML:      fmt.Sprintf("<p>Ticket <strong>%s</strong> has been closed.</p>", number),
		PlainText: fmt.Sprintf("Ticket %s has been closed.", number),
	}
}

func statusChangeTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	oldStatus := payloadString(payload, "oldStatus")
	newStatus := payloadString(payload, "newStatus")
	return EmailTemplate{
		Subject:   fmt.Sprintf("Ticket %s status changed", number),
		HTML:      fmt.Sprintf("<p>Ticket <strong>%s</strong> moved from %s to <strong>%s</strong>.</p>", number, oldStatus, newStatus),
		PlainText: fmt.Sprintf("Ticket %s moved from %s to %s.", number, oldStatus, newStatus),
	}
}

func slaWarningTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	return EmailTemplate{
		Subject:   fmt.Sprintf("SLA warning for ticket %s", number),
		HTML:      fmt.Sprintf("<p>Ticket <strong>%s</strong> is approaching its SLA deadline.</p>", number),
		PlainText: fmt.Sprintf("Ticket %s is approaching its SLA deadline.", number),
	}
}

func slaBreachTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	return EmailTemplate{
		Subject:   fmt.Sprintf("SLA breached for ticket %s", number),
		HTML:      fmt.Sprintf("<p>Ticket <strong>%s</strong> has breached its SLA.</p>", number),
		PlainText: fmt.Sprintf("Ticket %s has breached its SLA.", number),
	}
}

func ticketUpdatedTemplate(payload map[string]any) EmailTemplate {
	number := payloadString(payload, "ticketNumber")
	title := payloadString(payload, "title")
	return EmailTemplate{
		Subject:   fmt.Sprintf("Ticket %s updated", number),
		HTML:      fmt.Sprintf("<p>Ticket <strong>%s</strong> (%s) has been updated.</p>", number, title),
		PlainText: fmt.Sprintf("Ticket %s (%s) has been updated.", number, title),
	}
}
