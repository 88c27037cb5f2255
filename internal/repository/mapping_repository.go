package repository

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studioops/support-mailroom/internal/domain"
)

// MappingRepository stores thread mappings written by the ingestion
// pipeline and queried during dedup and reply matching. Lookup methods
// return (nil, nil) when no mapping matches.
type MappingRepository interface {
	Create(ctx context.Context, mapping *domain.ThreadMapping) error
	GetByMessageID(ctx context.Context, messageID string) (*domain.ThreadMapping, error)
	FindRecentBySenderSubject(ctx context.Context, sender, normalizedSubject string, since time.Time) (*domain.ThreadMapping, error)
	ListAnchorsBySender(ctx context.Context, normalizedSender string, since time.Time) ([]domain.ThreadMapping, error)
}

type mappingRepository struct {
	pool *pgxpool.Pool
}

// NewMappingRepository instantiates the Postgres-backed repository.
func NewMappingRepository(pool *pgxpool.Pool) MappingRepository {
	return &mappingRepository{pool: pool}
}

func (r *mappingRepository) Create(ctx context.Context, mapping *domain.ThreadMapping) error {
	const query = `
        INSERT INTO thread_mappings (source_message_id, ticket_id, message_id, sender, subject,
            normalized_sender, normalized_subject, thread_match, confidence)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		mapping.SourceMessageID,
		mapping.TicketID,
		mapping.MessageID,
		mapping.Sender,
		mapping.Subject,
		mapping.NormalizedSender,
		mapping.NormalizedSubject,
		mapping.ThreadMatch,
		mapping.Confidence,
	).Scan(&mapping.ID, &mapping.CreatedAt)
}

func (r *mappingRepository) GetByMessageID(ctx context.Context, messageID string) (*domain.ThreadMapping, error) {
	const query = `
        SELECT id, source_message_id, ticket_id, message_id, sender, subject,
               normalized_sender, normalized_subject, thread_match, confidence, created_at
        FROM thread_mappings WHERE message_id=$1
        ORDER BY created_at ASC LIMIT 1`
	return r.fetchSingle(ctx, query, messageID)
}

func (r *mappingRepository) FindRecentBySenderSubject(ctx context.Context, sender, normalizedSubject string, since time.Time) (*domain.ThreadMapping, error) {
	const query = `
        SELECT id, source_message_id, ticket_id, message_id, sender, subject,
               normalized_sender, normalized_subject, thread_match, confidence, created_at
        FROM thread_mappings
        WHERE sender=$1 AND normalized_subject=$2 AND created_at >= $3
        ORDER BY created_at ASC LIMIT 1`
	return r.fetchSingle(ctx, query, sender, normalizedSubject, since)
}

func (r *mappingRepository) ListAnchorsBySender(ctx context.Context, normalizedSender string, since time.Time) ([]domain.ThreadMapping, error) {
	const query = `
        SELECT id, source_message_id, ticket_id, message_id, sender, subject,
               normalized_sender, normalized_subject, thread_match, confidence, created_at
        FROM thread_mappings
        WHERE normalized_sender=$1 AND thread_match=TRUE AND created_at >= $2
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, normalizedSender, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ThreadMapping
	for rows.Next() {
		var mapping domain.ThreadMapping
		if err := scanMapping(rows.Scan, &mapping); err != nil {
			return nil, err
		}
		result = append(result, mapping)
	}
	return result, rows.Err()
}

func (r *mappingRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.ThreadMapping, error) {
	var mapping domain.ThreadMapping
	err := scanMapping(r.pool.QueryRow(ctx, query, args...).Scan, &mapping)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func scanMapping(scan func(...any) error, mapping *domain.ThreadMapping) error {
	return scan(
		&mapping.ID,
		&mapping.SourceMessageID,
		&mapping.TicketID,
		&mapping.MessageID,
		&mapping.Sender,
		&mapping.Subject,
		&mapping.NormalizedSender,
		&mapping.NormalizedSubject,
		&mapping.ThreadMatch,
		&mapping.Confidence,
		&mapping.CreatedAt,
	)
}

// memoryMappingRepository keeps mappings in process memory. Used when no
// Postgres DSN is configured, and as the fake in tests.
type memoryMappingRepository struct {
	mu       sync.RWMutex
	mappings []domain.ThreadMapping
	nextID   int
}

// NewMemoryMappingRepository instantiates the in-memory repository.
func NewMemoryMappingRepository() MappingRepository {
	return &memoryMappingRepository{}
}

func (r *memoryMappingRepository) Create(ctx context.Context, mapping *domain.ThreadMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if mapping.ID == "" {
		mapping.ID = "mapping-" + strconv.Itoa(r.nextID)
	}
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = time.Now()
	}
	r.mappings = append(r.mappings, *mapping)
	return nil
}

func (r *memoryMappingRepository) GetByMessageID(ctx context.Context, messageID string) (*domain.ThreadMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.mappings {
		if r.mappings[i].MessageID == messageID {
			mapping := r.mappings[i]
			return &mapping, nil
		}
	}
	return nil, nil
}

func (r *memoryMappingRepository) FindRecentBySenderSubject(ctx context.Context, sender, normalizedSubject string, since time.Time) (*domain.ThreadMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.mappings {
		m := r.mappings[i]
		if m.Sender == sender && m.NormalizedSubject == normalizedSubject && !m.CreatedAt.Before(since) {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *memoryMappingRepository) ListAnchorsBySender(ctx context.Context, normalizedSender string, since time.Time) ([]domain.ThreadMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.ThreadMapping
	for i := range r.mappings {
		m := r.mappings[i]
		if m.ThreadMatch && m.NormalizedSender == normalizedSender && !m.CreatedAt.Before(since) {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
