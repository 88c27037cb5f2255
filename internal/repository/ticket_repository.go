package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studioops/support-mailroom/internal/domain"
)

// TicketRepository is the persistence collaborator the ingestion pipeline
// creates tickets and appends comments through.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	AppendComment(ctx context.Context, comment *domain.TicketComment) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ExternalKey == "" {
		ticket.ExternalKey = GenerateTicketKey()
	}
	metadata, err := json.Marshal(ticket.EmailMetadata)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (external_key, studio_id, title, description, status, priority, category,
            sender_email, sender_name, email_metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.StudioID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.SenderEmail,
		ticket.SenderName,
		metadata,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) AppendComment(ctx context.Context, comment *domain.TicketComment) error {
	attachments := make([]map[string]any, 0, len(comment.Attachments))
	for _, att := range comment.Attachments {
		attachments = append(attachments, map[string]any{
			"file_name":    att.FileName,
			"content_type": att.ContentType,
			"size_bytes":   att.SizeBytes,
		})
	}
	attachmentJSON, err := json.Marshal(attachments)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_comments (ticket_id, author_name, author_email, body, attachments)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorName,
		comment.AuthorEmail,
		comment.Body,
		attachmentJSON,
	).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `UPDATE tickets SET updated_at=NOW() WHERE id=$1`, comment.TicketID)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, external_key, studio_id, title, description, status, priority, category,
               sender_email, sender_name, email_metadata, created_at, updated_at, closed_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	var metadata []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.StudioID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.SenderEmail,
		&ticket.SenderName,
		&metadata,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		var em domain.EmailMetadata
		if err := json.Unmarshal(metadata, &em); err == nil {
			ticket.EmailMetadata = &em
		}
	}
	return &ticket, nil
}

// GenerateTicketKey produces a short human-facing ticket key.
func GenerateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// memoryTicketRepository keeps tickets in process memory. Used when no
// Postgres DSN is configured, and as the fake in tests.
type memoryTicketRepository struct {
	mu       sync.RWMutex
	tickets  map[string]*domain.Ticket
	comments map[string][]domain.TicketComment
}

// NewMemoryTicketRepository instantiates the in-memory repository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		tickets:  make(map[string]*domain.Ticket),
		comments: make(map[string][]domain.TicketComment),
	}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.ExternalKey == "" {
		ticket.ExternalKey = GenerateTicketKey()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *memoryTicketRepository) AppendComment(ctx context.Context, comment *domain.TicketComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[comment.TicketID]
	if !ok {
		return errors.New("ticket not found: " + comment.TicketID)
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now()
	r.comments[comment.TicketID] = append(r.comments[comment.TicketID], *comment)
	ticket.UpdatedAt = comment.CreatedAt
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *ticket
	return &copied, nil
}
