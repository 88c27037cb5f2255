package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/studioops/support-mailroom/internal/domain"
)

// digestKeyPrefix namespaces digest bucket keys in Redis.
const digestKeyPrefix = "mailroom:digest:"

// DigestRepository accumulates notifications awaiting batched delivery,
// keyed by (userID, frequency). Enqueue is append-only; Drain returns
// the queued notifications and clears the bucket atomically with respect
// to concurrent enqueues.
type DigestRepository interface {
	Enqueue(ctx context.Context, userID string, frequency domain.DigestFrequency, notification *domain.Notification) error
	Drain(ctx context.Context, userID string, frequency domain.DigestFrequency) ([]domain.Notification, error)
}

type redisDigestRepository struct {
	client *redis.Client
}

// NewDigestRepository instantiates the Redis-backed repository.
func NewDigestRepository(client *redis.Client) DigestRepository {
	return &redisDigestRepository{client: client}
}

func digestKey(userID string, frequency domain.DigestFrequency) string {
	return digestKeyPrefix + userID + ":" + string(frequency)
}

func (r *redisDigestRepository) Enqueue(ctx context.Context, userID string, frequency domain.DigestFrequency, notification *domain.Notification) error {
	raw, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return r.client.RPush(ctx, digestKey(userID, frequency), raw).Err()
}

func (r *redisDigestRepository) Drain(ctx context.Context, userID string, frequency domain.DigestFrequency) ([]domain.Notification, error) {
	key := digestKey(userID, frequency)

	// LRANGE+DEL inside MULTI so an enqueue racing the flush lands either
	// in this drain or in the next bucket, never both and never neither.
	pipe := r.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raws, err := rangeCmd.Result()
	if err != nil {
		return nil, err
	}
	result := make([]domain.Notification, 0, len(raws))
	for _, raw := range raws {
		var n domain.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

// memoryDigestRepository keeps buckets in process memory. Used when
// Redis is not configured, and as the fake in tests.
type memoryDigestRepository struct {
	mu      sync.Mutex
	buckets map[string][]domain.Notification
}

// NewMemoryDigestRepository instantiates the in-memory repository.
func NewMemoryDigestRepository() DigestRepository {
	return &memoryDigestRepository{
		buckets: make(map[string][]domain.Notification),
	}
}

func (r *memoryDigestRepository) Enqueue(ctx context.Context, userID string, frequency domain.DigestFrequency, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := digestKey(userID, frequency)
	r.buckets[key] = append(r.buckets[key], *notification)
	return nil
}

func (r *memoryDigestRepository) Drain(ctx context.Context, userID string, frequency domain.DigestFrequency) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := digestKey(userID, frequency)
	queued := r.buckets[key]
	delete(r.buckets, key)
	return queued, nil
}
