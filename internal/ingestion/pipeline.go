package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studioops/support-mailroom/internal/config"
	"github.com/studioops/support-mailroom/internal/domain"
	"github.com/studioops/support-mailroom/internal/events"
	"github.com/studioops/support-mailroom/internal/observability"
	"github.com/studioops/support-mailroom/internal/repository"
)

// anchorConfidence is recorded on mappings for newly created tickets.
const anchorConfidence = 0.95

// headerMatchConfidence is recorded when a reply matched via
// In-Reply-To/References headers.
const headerMatchConfidence = 0.9

// StudioResolver resolves the owning studio for a sender's email domain.
// Real resolution lives in the surrounding system; the default resolver
// returns a configured constant.
type StudioResolver interface {
	ResolveStudioForDomain(ctx context.Context, emailDomain string) (string, error)
}

// StaticStudioResolver resolves every domain to one studio.
type StaticStudioResolver struct {
	StudioID string
}

// ResolveStudioForDomain returns the configured studio id.
func (r StaticStudioResolver) ResolveStudioForDomain(ctx context.Context, emailDomain string) (string, error) {
	return r.StudioID, nil
}

// Result is the outcome of processing one inbound email.
type Result struct {
	TicketID string `json:"ticket_id"`
	Created  bool   `json:"created"`
}

// Pipeline converts raw inbound email payloads into ticket creations or
// thread comments, deduplicating resends and routing replies to the
// ticket they belong to.
type Pipeline struct {
	mappings   repository.MappingRepository
	tickets    repository.TicketRepository
	studios    StudioResolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.MailroomConfig
	now        func() time.Time

	threadLocks *keyedMutex
}

// PipelineDependencies bundles collaborators for the pipeline.
type PipelineDependencies struct {
	MappingRepo repository.MappingRepository
	TicketRepo  repository.TicketRepository
	Studios     StudioResolver
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Now         func() time.Time
}

// NewPipeline constructs the pipeline.
func NewPipeline(cfg config.MailroomConfig, deps PipelineDependencies) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	studios := deps.Studios
	if studios == nil {
		studios = StaticStudioResolver{StudioID: cfg.DefaultStudioID}
	}
	return &Pipeline{
		mappings:    deps.MappingRepo,
		tickets:     deps.TicketRepo,
		studios:     studios,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		cfg:         cfg,
		now:         now,
		threadLocks: newKeyedMutex(),
	}
}

// ProcessInboundEmail normalizes the payload, checks for duplicates,
// routes replies to their existing ticket, and otherwise creates a new
// ticket. Errors from collaborators propagate to the caller: either a
// ticket action and its mapping are recorded, or nothing is.
func (p *Pipeline) ProcessInboundEmail(ctx context.Context, raw RawEmail) (Result, error) {
	msg := Normalize(raw, p.now())

	sender := SenderAddress(msg.From)
	normSender := NormalizeSender(msg.From)
	normSubject := NormalizeSubject(msg.Subject)

	// Serialize the dedup/thread-match read-then-write sequence per
	// thread key so two racing messages in one thread cannot both pass
	// the checks and create two tickets.
	unlock := p.threadLocks.Lock(normSender + "|" + normSubject)
	defer unlock()

	if result, ok, err := p.findDuplicate(ctx, msg, sender, normSubject); err != nil {
		return Result{}, err
	} else if ok {
		p.metrics.RecordIngestion("duplicate")
		return result, nil
	}

	if result, ok, err := p.matchThread(ctx, msg, sender, normSender); err != nil {
		return Result{}, err
	} else if ok {
		p.metrics.RecordIngestion("appended")
		return result, nil
	}

	result, err := p.createTicket(ctx, msg, sender, normSender, normSubject)
	if err != nil {
		p.logger.Error("inbound email processing failed",
			zap.String("message_id", msg.MessageID),
			zap.String("sender", sender),
			zap.Error(err))
		return Result{}, err
	}
	p.metrics.RecordIngestion("created")
	return result, nil
}

// findDuplicate applies the two dedup rules: an exact protocol
// Message-ID match against a prior non-anchor record, or a same-sender
// message with a normalized-equal subject inside the trailing window.
func (p *Pipeline) findDuplicate(ctx context.Context, msg *domain.InboundMessage, sender, normSubject string) (Result, bool, error) {
	if msg.MessageID != "" {
		prior, err := p.mappings.GetByMessageID(ctx, msg.MessageID)
		if err != nil {
			return Result{}, false, err
		}
		if prior != nil && !prior.ThreadMatch {
			p.logDuplicate(ctx, msg, prior, "message_id")
			return Result{TicketID: prior.TicketID, Created: false}, true, nil
		}
	}

	since := p.now().Add(-p.cfg.DedupWindow())
	prior, err := p.mappings.FindRecentBySenderSubject(ctx, sender, normSubject, since)
	if err != nil {
		return Result{}, false, err
	}
	if prior != nil {
		p.logDuplicate(ctx, msg, prior, "sender_subject_window")
		return Result{TicketID: prior.TicketID, Created: false}, true, nil
	}
	return Result{}, false, nil
}

// matchThread routes replies: first by In-Reply-To/References against
// thread anchors, then by the same-normalized-sender similar-subject
// heuristic.
func (p *Pipeline) matchThread(ctx context.Context, msg *domain.InboundMessage, sender, normSender string) (Result, bool, error) {
	candidates := make([]string, 0, 1+len(msg.References))
	if msg.InReplyTo != "" {
		candidates = append(candidates, msg.InReplyTo)
	}
	for _, ref := range msg.References {
		if ref != "" {
			candidates = append(candidates, ref)
		}
	}

	for _, candidate := range candidates {
		anchor, err := p.mappings.GetByMessageID(ctx, candidate)
		if err != nil {
			return Result{}, false, err
		}
		if anchor != nil && anchor.ThreadMatch {
			if err := p.appendComment(ctx, msg, sender, anchor.TicketID, "references", headerMatchConfidence); err != nil {
				return Result{}, false, err
			}
			return Result{TicketID: anchor.TicketID, Created: false}, true, nil
		}
	}

	// The heuristic only considers anchors inside the trailing window;
	// older threads are matchable by reply headers alone, so a fresh
	// message about an old subject opens a new ticket.
	anchors, err := p.mappings.ListAnchorsBySender(ctx, normSender, p.now().Add(-p.cfg.DedupWindow()))
	if err != nil {
		return Result{}, false, err
	}
	for _, anchor := range anchors {
		score := SubjectSimilarity(msg.Subject, anchor.Subject)
		if score > p.cfg.SimilarityThreshold {
			if err := p.appendComment(ctx, msg, sender, anchor.TicketID, "heuristic", score); err != nil {
				return Result{}, false, err
			}
			return Result{TicketID: anchor.TicketID, Created: false}, true, nil
		}
	}
	return Result{}, false, nil
}

func (p *Pipeline) appendComment(ctx context.Context, msg *domain.InboundMessage, sender, ticketID, via string, confidence float64) error {
	comment := &domain.TicketComment{
		TicketID:    ticketID,
		AuthorName:  SenderName(msg.From),
		AuthorEmail: sender,
		Body:        msg.Body,
		Attachments: msg.Attachments,
	}
	if err := p.tickets.AppendComment(ctx, comment); err != nil {
		return err
	}

	p.logger.Info("comment appended from email",
		zap.String("ticket_id", ticketID),
		zap.String("sender", sender),
		zap.String("matched_via", via),
		zap.Float64("confidence", confidence))
	p.publishEvent(ctx, events.Event{
		Type:     events.EventEmailCommentAppended,
		TicketID: ticketID,
		Payload: events.EmailCommentAppendedPayload{
			SenderEmail: sender,
			MessageID:   msg.MessageID,
			MatchedVia:  via,
			Confidence:  confidence,
		},
	})
	return nil
}

func (p *Pipeline) createTicket(ctx context.Context, msg *domain.InboundMessage, sender, normSender, normSubject string) (Result, error) {
	priority, category := ExtractMetadata(msg.Subject, msg.Body)

	studioID, err := p.studios.ResolveStudioForDomain(ctx, SenderDomain(msg.From))
	if err != nil {
		return Result{}, err
	}

	ticket := &domain.Ticket{
		StudioID:    studioID,
		Title:       msg.Subject,
		Description: msg.Body,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    category,
		SenderEmail: sender,
		SenderName:  SenderName(msg.From),
		EmailMetadata: &domain.EmailMetadata{
			MessageID:  msg.MessageID,
			From:       msg.From,
			To:         msg.To,
			CC:         msg.CC,
			ReceivedAt: msg.ReceivedAt,
		},
	}
	if err := p.tickets.Create(ctx, ticket); err != nil {
		return Result{}, err
	}

	if err := p.mappings.Create(ctx, &domain.ThreadMapping{
		SourceMessageID:   msg.ID,
		TicketID:          ticket.ID,
		MessageID:         protocolMessageID(msg),
		Sender:            sender,
		Subject:           msg.Subject,
		NormalizedSender:  normSender,
		NormalizedSubject: normSubject,
		ThreadMatch:       true,
		Confidence:        anchorConfidence,
		CreatedAt:         p.now(),
	}); err != nil {
		return Result{}, err
	}

	p.logger.Info("ticket created from email",
		zap.String("ticket_id", ticket.ID),
		zap.String("external_key", ticket.ExternalKey),
		zap.String("sender", sender),
		zap.String("priority", string(priority)),
		zap.String("category", string(category)))
	p.publishEvent(ctx, events.Event{
		Type:     events.EventEmailTicketCreated,
		TicketID: ticket.ID,
		Payload: events.EmailTicketCreatedPayload{
			ExternalKey: ticket.ExternalKey,
			StudioID:    studioID,
			SenderEmail: sender,
			SenderName:  ticket.SenderName,
			Subject:     msg.Subject,
			Priority:    priority,
			Category:    category,
		},
	})
	return Result{TicketID: ticket.ID, Created: true}, nil
}

func (p *Pipeline) logDuplicate(ctx context.Context, msg *domain.InboundMessage, prior *domain.ThreadMapping, reason string) {
	p.logger.Info("duplicate inbound email",
		zap.String("ticket_id", prior.TicketID),
		zap.String("message_id", msg.MessageID),
		zap.String("reason", reason))
	p.publishEvent(ctx, events.Event{
		Type:     events.EventEmailDuplicateFound,
		TicketID: prior.TicketID,
		Payload: events.EmailDuplicateFoundPayload{
			SenderEmail: SenderAddress(msg.From),
			MessageID:   msg.MessageID,
			Reason:      reason,
		},
	})
}

func (p *Pipeline) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

// protocolMessageID falls back to the internal message id when the
// provider supplied no Message-ID header.
func protocolMessageID(msg *domain.InboundMessage) string {
	if msg.MessageID != "" {
		return msg.MessageID
	}
	return msg.ID
}
