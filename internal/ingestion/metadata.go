package ingestion

import (
	"regexp"
	"strings"

	"github.com/studioops/support-mailroom/internal/domain"
)

var (
	highPriorityRe     = regexp.MustCompile(`urgent|critical|asap|emergency|immediately`)
	criticalPriorityRe = regexp.MustCompile(`asap|critical|urgently|emergency|crisis`)
	lowPriorityRe      = regexp.MustCompile(`low priority|can wait|whenever`)

	billingRe   = regexp.MustCompile(`billing|payment|invoice|refund|charge|subscription`)
	technicalRe = regexp.MustCompile(`error|bug|broken|not working|crash|login|password|technical`)
	classRe     = regexp.MustCompile(`class|session|booking|schedule|reschedule|instructor`)
	feedbackRe  = regexp.MustCompile(`feedback|suggestion|complaint|review`)
)

// ExtractMetadata derives a ticket priority and category from the subject
// and body.
//
// Priority checks run in sequence over a default of medium, and the last
// matching rule wins: a high match can be upgraded to critical by the
// independent critical check, and the low check runs last so it overrides
// both. Category checks are an if/else-if chain where the first match
// wins, billing tested first.
func ExtractMetadata(subject, body string) (domain.TicketPriority, domain.TicketCategory) {
	content := strings.ToLower(subject + " " + body)

	priority := domain.TicketPriorityMedium
	if highPriorityRe.MatchString(content) {
		priority = domain.TicketPriorityHigh
	}
	if criticalPriorityRe.MatchString(content) {
		priority = domain.TicketPriorityCritical
	}
	if lowPriorityRe.MatchString(content) {
		priority = domain.TicketPriorityLow
	}

	category := domain.CategoryGeneralInquiry
	if billingRe.MatchString(content) {
		category = domain.CategoryBilling
	} else if technicalRe.MatchString(content) {
		category = domain.CategoryTechnical
	} else if classRe.MatchString(content) {
		category = domain.CategoryClassSession
	} else if feedbackRe.MatchString(content) {
		category = domain.CategoryFeedback
	}

	return priority, category
}
