package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studioops/support-mailroom/internal/domain"
)

// NotificationRepository is the all-notifications queue behind the
// router's list and mark-read operations. Listing preserves insertion
// order, oldest first. MarkRead on an unknown id is a no-op.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates the Postgres-backed repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	payload, err := json.Marshal(notification.Payload)
	if err != nil {
		return err
	}
	channels := make([]string, 0, len(notification.Channels))
	for _, ch := range notification.Channels {
		channels = append(channels, string(ch))
	}
	const query = `
        INSERT INTO notifications (id, user_id, type, title, message, payload, channels, priority, read, created_at, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err = r.pool.Exec(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		payload,
		channels,
		notification.Priority,
		notification.Read,
		notification.CreatedAt,
		notification.ExpiresAt,
	)
	return err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]domain.Notification, error) {
	query := `
        SELECT id, user_id, type, title, message, payload, channels, priority, read, created_at, expires_at
        FROM notifications WHERE user_id=$1`
	if unreadOnly {
		query += ` AND read=FALSE`
	}
	query += ` ORDER BY created_at ASC LIMIT $2`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var payload []byte
		var channels []string
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Title,
			&n.Message,
			&payload,
			&channels,
			&n.Priority,
			&n.Read,
			&n.CreatedAt,
			&n.ExpiresAt,
		); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &n.Payload)
		}
		for _, ch := range channels {
			n.Channels = append(n.Channels, domain.Channel(ch))
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1`, id)
	return err
}

// memoryNotificationRepository keeps the queue in process memory. Used
// when no Postgres DSN is configured, and as the fake in tests.
type memoryNotificationRepository struct {
	mu    sync.RWMutex
	queue []*domain.Notification
}

// NewMemoryNotificationRepository instantiates the in-memory repository.
func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{}
}

func (r *memoryNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	copied := *notification
	r.queue = append(r.queue, &copied)
	return nil
}

func (r *memoryNotificationRepository) ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Notification
	for _, n := range r.queue {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		result = append(result, *n)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *memoryNotificationRepository) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.queue {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return nil
}
