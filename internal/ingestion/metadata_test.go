package ingestion

import (
	"testing"

	"github.com/studioops/support-mailroom/internal/domain"
)

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name         string
		subject      string
		body         string
		wantPriority domain.TicketPriority
		wantCategory domain.TicketCategory
	}{
		{
			name:         "no keywords defaults",
			subject:      "Question about my account",
			body:         "Just wondering about something.",
			wantPriority: domain.TicketPriorityMedium,
			wantCategory: domain.CategoryGeneralInquiry,
		},
		{
			name:         "urgent raises priority",
			subject:      "Urgent: door code not arriving",
			body:         "Need this fixed soon.",
			wantPriority: domain.TicketPriorityHigh,
			wantCategory: domain.CategoryGeneralInquiry,
		},
		{
			name:         "asap escalates to critical",
			subject:      "Need help ASAP",
			body:         "The whole studio is locked out.",
			wantPriority: domain.TicketPriorityCritical,
			wantCategory: domain.CategoryGeneralInquiry,
		},
		{
			name:         "low marker overrides urgent",
			subject:      "Urgent-ish question",
			body:         "This is urgent in spirit but it can wait until next week.",
			wantPriority: domain.TicketPriorityLow,
			wantCategory: domain.CategoryGeneralInquiry,
		},
		{
			name:         "billing wins over technical",
			subject:      "Payment error",
			body:         "The invoice page shows a bug.",
			wantPriority: domain.TicketPriorityMedium,
			wantCategory: domain.CategoryBilling,
		},
		{
			name:         "technical before class",
			subject:      "Broken booking page",
			body:         "The class schedule crashes my browser.",
			wantPriority: domain.TicketPriorityMedium,
			wantCategory: domain.CategoryTechnical,
		},
		{
			name:         "class session keywords",
			subject:      "Reschedule my session",
			body:         "Can I move to Thursday?",
			wantPriority: domain.TicketPriorityMedium,
			wantCategory: domain.CategoryClassSession,
		},
		{
			name:         "feedback keywords",
			subject:      "A suggestion",
			body:         "Some feedback on the new layout.",
			wantPriority: domain.TicketPriorityMedium,
			wantCategory: domain.CategoryFeedback,
		},
		{
			name:         "body contributes to matching",
			subject:      "Hi",
			body:         "I was charged twice, please refund me urgently.",
			wantPriority: domain.TicketPriorityCritical,
			wantCategory: domain.CategoryBilling,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priority, category := ExtractMetadata(tt.subject, tt.body)
			if priority != tt.wantPriority {
				t.Errorf("priority = %q, want %q", priority, tt.wantPriority)
			}
			if category != tt.wantCategory {
				t.Errorf("category = %q, want %q", category, tt.wantCategory)
			}
		})
	}
}
