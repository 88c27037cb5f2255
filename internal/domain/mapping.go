package domain

import "time"

// ThreadMapping links one processed inbound message to the ticket it
// created or was appended to. Mappings are write-once; later messages
// consult them for deduplication and reply matching.
type ThreadMapping struct {
	ID string
	// SourceMessageID is the internal id of the inbound message.
	SourceMessageID string
	TicketID        string
	// MessageID is the protocol Message-ID header, falling back to the
	// internal message id when the provider did not supply one.
	MessageID string
	Sender    string
	Subject   string
	// NormalizedSender and NormalizedSubject are the forms used for
	// dedup-window and heuristic thread lookups (plus-tag stripped,
	// case-folded sender; case-folded, whitespace-collapsed subject).
	NormalizedSender  string
	NormalizedSubject string
	// ThreadMatch marks a thread anchor: the mapping recorded for a newly
	// created ticket, eligible to be matched by future replies.
	ThreadMatch bool
	// Confidence is in [0,1].
	Confidence float64
	CreatedAt  time.Time
}
