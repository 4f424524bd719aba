package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"storefront/internal/models"
	"storefront/internal/utils"
	"storefront/pkg/cache"
)

// CacheService is the key/value store the services lean on. *cache.RedisCache
// satisfies it.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Increment(ctx context.Context, key string, expiration time.Duration) (int64, error)
}

const (
	idempotencyPending = "pending"
	idempotencyDone    = "done"

	// pendingTTL bounds how long a crashed request can block its key.
	pendingTTL = time.Minute
)

type IdempotencyRecord struct {
	State  string            `json:"state"`
	Result *models.Deduction `json:"result,omitempty"`
}

// IdempotencyStore deduplicates retried coupon deductions. Keys are scoped
// per user so two users can never collide on the same client key.
type IdempotencyStore struct {
	cache CacheService
	ttl   time.Duration
}

func NewIdempotencyStore(cache CacheService, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{cache: cache, ttl: ttl}
}

func (s *IdempotencyStore) key(userID, key string) string {
	return fmt.Sprintf("%s%s:%s", utils.CacheIdempotencyPrefix, userID, key)
}

// Reserve claims key for a new deduction. When the key was already claimed it
// returns the existing record and false.
func (s *IdempotencyStore) Reserve(ctx context.Context, userID, key string) (*IdempotencyRecord, bool, error) {
	ok, err := s.cache.SetNX(ctx, s.key(userID, key), IdempotencyRecord{State: idempotencyPending}, pendingTTL)
	if err != nil {
		return nil, false, errors.Wrap(err, "reserve idempotency key")
	}
	if ok {
		return nil, true, nil
	}

	var existing IdempotencyRecord
	if err := s.cache.Get(ctx, s.key(userID, key), &existing); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			// Expired between SETNX and GET; treat as in flight so the
			// caller retries rather than deducting twice.
			return &IdempotencyRecord{State: idempotencyPending}, false, nil
		}
		return nil, false, errors.Wrap(err, "read idempotency key")
	}

	return &existing, false, nil
}

// Complete stores the outcome so retries replay it. A nil result records
// that no spendable coupon was found.
func (s *IdempotencyStore) Complete(ctx context.Context, userID, key string, result *models.Deduction) error {
	record := IdempotencyRecord{State: idempotencyDone, Result: result}
	if err := s.cache.Set(ctx, s.key(userID, key), record, s.ttl); err != nil {
		return errors.Wrap(err, "store idempotency result")
	}
	return nil
}

// Release drops a reservation after a failed deduction so the client can retry.
func (s *IdempotencyStore) Release(ctx context.Context, userID, key string) error {
	return s.cache.Delete(ctx, s.key(userID, key))
}
