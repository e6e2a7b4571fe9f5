package storage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
	"github.com/chlachla/chlachla-backend/internal/storage"
)

func TestRedisOTPStore_PutUsesRemainingTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := storage.NewRedisOTPStore(db)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	challenge := &models.OTPChallenge{
		Key:       "9876543210",
		Code:      "123456",
		Purpose:   "login",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	data, err := json.Marshal(challenge)
	require.NoError(t, err)

	mock.ExpectSet("otp:9876543210", data, 10*time.Minute).SetVal("OK")

	require.NoError(t, store.Put(context.Background(), challenge))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOTPStore_GetMissingKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := storage.NewRedisOTPStore(db)

	mock.ExpectGet("otp:nobody").RedisNil()

	_, err := store.Get(context.Background(), "nobody")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOTPStore_GetRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := storage.NewRedisOTPStore(db)

	challenge := &models.OTPChallenge{
		Key:      "9876543210",
		Code:     "123456",
		Purpose:  "login",
		Attempts: 2,
	}
	data, err := json.Marshal(challenge)
	require.NoError(t, err)

	mock.ExpectGet("otp:9876543210").SetVal(string(data))

	got, err := store.Get(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "123456", got.Code)
	assert.Equal(t, 2, got.Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOTPStore_UpdateKeepsTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := storage.NewRedisOTPStore(db)

	challenge := &models.OTPChallenge{
		Key:      "9876543210",
		Code:     "123456",
		Attempts: 1,
	}
	data, err := json.Marshal(challenge)
	require.NoError(t, err)

	// KEEPTTL: a failed attempt must not extend the challenge
	mock.ExpectSet("otp:9876543210", data, redis.KeepTTL).SetVal("OK")

	require.NoError(t, store.Update(context.Background(), challenge))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOTPStore_DeleteAndUnreachable(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := storage.NewRedisOTPStore(db)

	mock.ExpectDel("otp:9876543210").SetVal(1)
	require.NoError(t, store.Delete(context.Background(), "9876543210"))

	mock.ExpectGet("otp:9876543210").SetErr(assert.AnError)
	_, err := store.Get(context.Background(), "9876543210")
	assert.True(t, apperrors.Is(err, apperrors.KindInternal))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOTPStore_SweepIsNoOp(t *testing.T) {
	db, _ := redismock.NewClientMock()
	store := storage.NewRedisOTPStore(db)

	removed, err := store.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
