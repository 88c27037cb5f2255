package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/studioops/support-mailroom/internal/domain"
)

// prefKeyPrefix namespaces preference keys in Redis.
const prefKeyPrefix = "mailroom:prefs:"

// PreferenceRepository stores per-user notification preferences. Get is
// read-through with defaults: a never-seen user receives system defaults
// which are persisted on that first access.
type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*domain.UserNotificationPreferences, error)
	Save(ctx context.Context, prefs *domain.UserNotificationPreferences) error
}

type redisPreferenceRepository struct {
	client *redis.Client
}

// NewPreferenceRepository instantiates the Redis-backed repository.
func NewPreferenceRepository(client *redis.Client) PreferenceRepository {
	return &redisPreferenceRepository{client: client}
}

func (r *redisPreferenceRepository) Get(ctx context.Context, userID string) (*domain.UserNotificationPreferences, error) {
	raw, err := r.client.Get(ctx, prefKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		prefs := domain.DefaultPreferences(userID)
		if err := r.Save(ctx, prefs); err != nil {
			return nil, err
		}
		return prefs, nil
	}
	if err != nil {
		return nil, err
	}
	var prefs domain.UserNotificationPreferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *redisPreferenceRepository) Save(ctx context.Context, prefs *domain.UserNotificationPreferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, prefKeyPrefix+prefs.UserID, raw, 0).Err()
}

// memoryPreferenceRepository keeps preferences in process memory. Used
// when Redis is not configured, and as the fake in tests.
type memoryPreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[string]*domain.UserNotificationPreferences
}

// NewMemoryPreferenceRepository instantiates the in-memory repository.
func NewMemoryPreferenceRepository() PreferenceRepository {
	return &memoryPreferenceRepository{
		prefs: make(map[string]*domain.UserNotificationPreferences),
	}
}

func (r *memoryPreferenceRepository) Get(ctx context.Context, userID string) (*domain.UserNotificationPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prefs, ok := r.prefs[userID]; ok {
		copied := *prefs
		return &copied, nil
	}
	prefs := domain.DefaultPreferences(userID)
	r.prefs[userID] = prefs
	copied := *prefs
	return &copied, nil
}

func (r *memoryPreferenceRepository) Save(ctx context.Context, prefs *domain.UserNotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *prefs
	r.prefs[prefs.UserID] = &copied
	return nil
}
