package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studioops/support-mailroom/internal/api/dto"
	"github.com/studioops/support-mailroom/internal/ingestion"
	apperrors "github.com/studioops/support-mailroom/pkg/util/errorutil"
)

// MailroomHandler receives inbound email webhooks.
type MailroomHandler struct {
	pipeline *ingestion.Pipeline
}

// NewMailroomHandler constructs handler.
func NewMailroomHandler(pipeline *ingestion.Pipeline) *MailroomHandler {
	return &MailroomHandler{pipeline: pipeline}
}

// InboundEmail POST /webhooks/email. Pipeline errors propagate so the
// provider sees a failure and retries; the email is never silently
// dropped.
func (h *MailroomHandler) InboundEmail(c *fiber.Ctx) error {
	var raw ingestion.RawEmail
	if err := c.BodyParser(&raw); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.pipeline.ProcessInboundEmail(c.Context(), raw)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.InboundEmailResponse{
		TicketID: result.TicketID,
		Created:  result.Created,
	}})
}
