package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
)

// RedisOTPStore persists challenges as JSON values with Redis' native
// per-key TTL. Eviction is handled by Redis itself, so SweepExpired is
// a no-op here.
type RedisOTPStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisOTPStore wraps an existing Redis client.
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client, now: time.Now}
}

// SetClock overrides the store's time source. Tests only.
func (r *RedisOTPStore) SetClock(now func() time.Time) {
	r.now = now
}

func otpKey(key string) string {
	return "otp:" + key
}

func (r *RedisOTPStore) Put(ctx context.Context, challenge *models.OTPChallenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return apperrors.Internal("failed to encode challenge", err)
	}
	ttl := challenge.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, otpKey(challenge.Key), data, ttl).Err(); err != nil {
		return apperrors.Internal("otp store unreachable", err)
	}
	return nil
}

func (r *RedisOTPStore) Get(ctx context.Context, key string) (*models.OTPChallenge, error) {
	data, err := r.client.Get(ctx, otpKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFound("not_found", "no verification code found")
	}
	if err != nil {
		return nil, apperrors.Internal("otp store unreachable", err)
	}
	var challenge models.OTPChallenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, apperrors.Internal("failed to decode challenge", err)
	}
	return &challenge, nil
}

func (r *RedisOTPStore) Update(ctx context.Context, challenge *models.OTPChallenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return apperrors.Internal("failed to encode challenge", err)
	}
	// KEEPTTL so a failed attempt does not extend the challenge
	if err := r.client.Set(ctx, otpKey(challenge.Key), data, redis.KeepTTL).Err(); err != nil {
		return apperrors.Internal("otp store unreachable", err)
	}
	return nil
}

func (r *RedisOTPStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, otpKey(key)).Err(); err != nil {
		return apperrors.Internal("otp store unreachable", err)
	}
	return nil
}

// SweepExpired is a no-op: Redis evicts expired keys on its own.
func (r *RedisOTPStore) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// NewRedisClient builds a Redis client from REDIS_ADDR (or
// REDIS_HOST/REDIS_PORT), REDIS_PASSWORD and REDIS_DB, and pings it
// with a short timeout. Returns an error if the server is unreachable
// so main can fall back to the in-memory store.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
