package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
	"github.com/chlachla/chlachla-backend/internal/storage"
)

func TestMemoryOTPStore_PutOverwrites(t *testing.T) {
	store := storage.NewMemoryOTPStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, &models.OTPChallenge{
		Key: "9876543210", Code: "111111", ExpiresAt: now.Add(10 * time.Minute),
	}))
	require.NoError(t, store.Put(ctx, &models.OTPChallenge{
		Key: "9876543210", Code: "222222", ExpiresAt: now.Add(10 * time.Minute),
	}))

	challenge, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "222222", challenge.Code)
}

func TestMemoryOTPStore_DeleteIsIdempotent(t *testing.T) {
	store := storage.NewMemoryOTPStore()
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "nobody"))

	_, err := store.Get(ctx, "nobody")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestMemoryOTPStore_SweepExpired(t *testing.T) {
	store := storage.NewMemoryOTPStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	current := base
	store.SetClock(func() time.Time { return current })

	require.NoError(t, store.Put(ctx, &models.OTPChallenge{
		Key: "expired-1", Code: "111111", ExpiresAt: base.Add(5 * time.Minute),
	}))
	require.NoError(t, store.Put(ctx, &models.OTPChallenge{
		Key: "expired-2", Code: "222222", ExpiresAt: base.Add(8 * time.Minute),
	}))
	require.NoError(t, store.Put(ctx, &models.OTPChallenge{
		Key: "live", Code: "333333", ExpiresAt: base.Add(20 * time.Minute),
	}))

	current = base.Add(10 * time.Minute)

	removed, err := store.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = store.Get(ctx, "expired-1")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	live, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "333333", live.Code)

	// Sweeping again is a no-op
	removed, err = store.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestMemoryOTPStore_UpdateMissingKey(t *testing.T) {
	store := storage.NewMemoryOTPStore()

	err := store.Update(context.Background(), &models.OTPChallenge{Key: "nobody"})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
