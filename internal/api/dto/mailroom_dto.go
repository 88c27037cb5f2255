package dto

// InboundEmailResponse is the webhook endpoint's reply.
type InboundEmailResponse struct {
	TicketID string `json:"ticket_id"`
	Created  bool   `json:"created"`
}
